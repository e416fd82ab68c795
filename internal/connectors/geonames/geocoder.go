package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/logger"
)

const (
	defaultBase = "http://api.geonames.org"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// ProactiveRate keeps well under the free-tier hourly quota.
	ProactiveRate = 1.0
)

// Ensure Geocoder implements the interface.
var _ driven.Geocoder = (*Geocoder)(nil)

// Geocoder queries the GeoNames JSON services under one username. With a
// cache attached, each distinct request is answered from storage while its
// entry is fresh.
type Geocoder struct {
	username string
	base     string
	http     *http.Client
	limiter  *rate.Limiter
	cache    driven.ResponseCache
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithBaseURL points the geocoder at a different host. Used by tests.
func WithBaseURL(base string) Option {
	return func(g *Geocoder) { g.base = base }
}

// WithCache attaches a response cache.
func WithCache(cache driven.ResponseCache) Option {
	return func(g *Geocoder) { g.cache = cache }
}

// New creates a geocoder for the given GeoNames username.
func New(username string, opts ...Option) *Geocoder {
	g := &Geocoder{
		username: username,
		base:     defaultBase,
		http:     &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// feature is the wire form of one geonames record. Coordinates come as
// strings.
type feature struct {
	GeonameID int64  `json:"geonameId"`
	Name      string `json:"name"`
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
	Fcode     string `json:"fcode"`
}

type searchResult struct {
	Geonames []feature `json:"geonames"`
}

// Lookup returns the best match for a free-text place name, or (nil, nil)
// when the gazetteer knows nothing.
func (g *Geocoder) Lookup(ctx context.Context, name string) (*driven.GeoCandidate, error) {
	query := url.Values{
		"q":        {name},
		"maxRows":  {"1"},
		"username": {g.username},
	}
	var res searchResult
	if err := g.getJSON(ctx, "/searchJSON", query, &res); err != nil {
		return nil, err
	}
	if len(res.Geonames) == 0 {
		return nil, nil
	}
	return &driven.GeoCandidate{
		ID:   res.Geonames[0].GeonameID,
		Name: res.Geonames[0].Name,
	}, nil
}

// Hierarchy returns the administrative chain of a geonames id, largest
// first.
func (g *Geocoder) Hierarchy(ctx context.Context, id int64) ([]driven.GeoFeature, error) {
	query := url.Values{
		"geonameId": {strconv.FormatInt(id, 10)},
		"username":  {g.username},
	}
	var res searchResult
	if err := g.getJSON(ctx, "/hierarchyJSON", query, &res); err != nil {
		return nil, err
	}
	out := make([]driven.GeoFeature, 0, len(res.Geonames))
	for _, f := range res.Geonames {
		gf := driven.GeoFeature{ID: f.GeonameID, Code: f.Fcode, Name: f.Name}
		if lat, err := strconv.ParseFloat(f.Lat, 64); err == nil {
			gf.Lat = lat
		}
		if lon, err := strconv.ParseFloat(f.Lng, 64); err == nil {
			gf.Lon = lon
		}
		out = append(out, gf)
	}
	return out, nil
}

func (g *Geocoder) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	full := g.base + path + "?" + query.Encode()
	if g.cache != nil {
		if body, ok := g.cache.Get(full); ok {
			return json.Unmarshal(body, v)
		}
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	logger.Info("Downloading: %s", full)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if g.cache != nil {
		if err := g.cache.Put(full, body); err != nil {
			logger.Warn("Cache write failed: %v", err)
		}
	}
	return nil
}
