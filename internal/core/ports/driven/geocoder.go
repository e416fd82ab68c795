package driven

import "context"

// GeoCandidate is the best match returned by a place lookup.
type GeoCandidate struct {
	ID   int64
	Name string
}

// GeoFeature is one level of a place's administrative hierarchy, ordered
// largest first (country before county before city).
type GeoFeature struct {
	ID   int64
	Code string // feature code, e.g. ADM1, PCLI, PPL
	Name string
	Lat  float64
	Lon  float64
}

// Geocoder resolves free-text place names through a remote gazetteer.
// Lookup returns (nil, nil) when there is no match.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (*GeoCandidate, error)
	Hierarchy(ctx context.Context, id int64) ([]GeoFeature, error)
}

// ResponseCache stores raw provider responses keyed by request, so repeated
// lookups within the expiry window never hit the network.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, body []byte) error
	Close() error
}
