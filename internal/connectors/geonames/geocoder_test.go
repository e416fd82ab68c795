package geonames

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.data[key]
	return body, ok
}

func (c *memCache) Put(key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = body
	return nil
}

func (c *memCache) Close() error { return nil }

func TestLookup(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "Paris, France", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("maxRows"))
		assert.Equal(t, "demo", r.URL.Query().Get("username"))
		fmt.Fprint(w, `{"geonames":[{"geonameId":2988507,"name":"Paris","lat":"48.85","lng":"2.35","fcode":"PPLC"}]}`)
	}))
	defer srv.Close()

	g := New("demo", WithBaseURL(srv.URL))
	cand, err := g.Lookup(context.Background(), "Paris, France")
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, int64(2988507), cand.ID)
	assert.Equal(t, "Paris", cand.Name)
	assert.Equal(t, 1, hits)
}

func TestLookup_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"geonames":[]}`)
	}))
	defer srv.Close()

	g := New("demo", WithBaseURL(srv.URL))
	cand, err := g.Lookup(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestHierarchy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hierarchyJSON", r.URL.Path)
		assert.Equal(t, "2988507", r.URL.Query().Get("geonameId"))
		fmt.Fprint(w, `{"geonames":[
			{"geonameId":3017382,"name":"France","lat":"46","lng":"2","fcode":"PCLI"},
			{"geonameId":2988507,"name":"Paris","lat":"48.85","lng":"2.35","fcode":"PPLC"}
		]}`)
	}))
	defer srv.Close()

	g := New("demo", WithBaseURL(srv.URL))
	features, err := g.Hierarchy(context.Background(), 2988507)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "PCLI", features[0].Code)
	assert.Equal(t, 46.0, features[0].Lat)
	assert.Equal(t, "Paris", features[1].Name)
	assert.Equal(t, 2.35, features[1].Lon)
}

func TestLookup_ServedFromCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"geonames":[{"geonameId":1,"name":"Once"}]}`)
	}))
	defer srv.Close()

	g := New("demo", WithBaseURL(srv.URL), WithCache(newMemCache()))

	first, err := g.Lookup(context.Background(), "Once")
	require.NoError(t, err)
	second, err := g.Lookup(context.Background(), "Once")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}

func TestLookup_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := New("demo", WithBaseURL(srv.URL))
	_, err := g.Lookup(context.Background(), "Paris")
	assert.Error(t, err)
}
