package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/logger"
)

// featureKinds classifies gazetteer feature codes into place kinds.
// Administrative divisions map to County, political entities to Country,
// populated places to City. Codes not listed stay Unknown.
var featureKinds = map[string]domain.PlaceKind{
	"ADM1": domain.PlaceCounty, "ADM1H": domain.PlaceCounty,
	"ADM2": domain.PlaceCounty, "ADM2H": domain.PlaceCounty,
	"ADM3": domain.PlaceCounty, "ADM3H": domain.PlaceCounty,
	"ADM4": domain.PlaceCounty, "ADM4H": domain.PlaceCounty,
	"ADM5": domain.PlaceCounty, "ADM5H": domain.PlaceCounty,
	"ADMD": domain.PlaceCounty, "ADMDH": domain.PlaceCounty,

	"PCL": domain.PlaceCountry, "PCLD": domain.PlaceCountry,
	"PCLF": domain.PlaceCountry, "PCLH": domain.PlaceCountry,
	"PCLI": domain.PlaceCountry, "PCLIX": domain.PlaceCountry,
	"PCLS": domain.PlaceCountry,

	"PPL": domain.PlaceCity, "PPLA": domain.PlaceCity,
	"PPLA2": domain.PlaceCity, "PPLA3": domain.PlaceCity,
	"PPLA4": domain.PlaceCity, "PPLA5": domain.PlaceCity,
	"PPLC": domain.PlaceCity, "PPLCH": domain.PlaceCity,
	"PPLF": domain.PlaceCity, "PPLG": domain.PlaceCity,
	"PPLH": domain.PlaceCity, "PPLL": domain.PlaceCity,
	"PPLQ": domain.PlaceCity, "PPLR": domain.PlaceCity,
	"PPLS": domain.PlaceCity, "PPLW": domain.PlaceCity,
	"PPLX": domain.PlaceCity,
}

// PlaceResolver resolves place names into Place entities, caching by display
// name within a run and by remote gazetteer id across hierarchy fetches
// (many cities share a country node). Geocoder is optional; without it every
// place is synthetic.
type PlaceResolver struct {
	// mu serializes whole resolutions so concurrent person builders cannot
	// race a cache miss into duplicate places.
	mu  sync.Mutex
	reg *Registry
	geo driven.Geocoder
}

// NewPlaceResolver creates a resolver. geo may be nil when no geocoding
// credential is configured.
func NewPlaceResolver(reg *Registry, geo driven.Geocoder) *PlaceResolver {
	return &PlaceResolver{reg: reg, geo: geo}
}

// Resolve returns the Place for a display name. remoteID is the tree
// service's place id when present; coord is a coordinate hint from the
// payload. Failed lookups fall back to a synthetic place, never an error.
func (pr *PlaceResolver) Resolve(ctx context.Context, name, remoteID string, coord *domain.Coord) *domain.Place {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if p, ok := pr.reg.PlaceByName(name); ok {
		return p
	}

	var place *domain.Place
	if pr.geo != nil {
		place = pr.lookup(ctx, name)
	}
	if place == nil {
		place = pr.synthetic(name, remoteID, coord)
	}
	pr.reg.IndexPlaceName(name, place)
	return place
}

// lookup queries the gazetteer and materializes the administrative hierarchy
// of the best match. Returns nil when there is no usable match.
func (pr *PlaceResolver) lookup(ctx context.Context, name string) *domain.Place {
	logger.Debug("Resolving place %q", name)
	cand, err := pr.geo.Lookup(ctx, name)
	if err != nil {
		logger.Warn("Place lookup for %q failed: %v", name, err)
		return nil
	}
	if cand == nil {
		return nil
	}
	return pr.hierarchy(ctx, cand.ID)
}

// hierarchy fetches the ordered administrative chain of a gazetteer id and
// links it with parent references, deduplicating shared ancestors by remote
// id. Returns the innermost place.
func (pr *PlaceResolver) hierarchy(ctx context.Context, id int64) *domain.Place {
	features, err := pr.geo.Hierarchy(ctx, id)
	if err != nil {
		logger.Warn("Place hierarchy for %d failed: %v", id, err)
		return nil
	}

	var last *domain.Place
	for _, feat := range features {
		// Continental and area levels have no genealogical value.
		if feat.Code == "AREA" || feat.Code == "CONT" {
			continue
		}
		placeID := "GEO" + strconv.FormatInt(feat.ID, 10)
		place, ok := pr.reg.PlaceByID(placeID)
		if !ok {
			place = &domain.Place{
				ID:     placeID,
				Name:   feat.Name,
				Kind:   featureKinds[feat.Code],
				Parent: last,
				Coord:  &domain.Coord{Lat: feat.Lat, Lon: feat.Lon},
			}
			pr.reg.AddPlace(place)
		}
		last = place
	}
	return last
}

// synthetic creates a place from local knowledge only: keyed by the remote
// id when given, otherwise by a locally assigned sequence number, with the
// coordinate hint (or one previously observed for the same remote id).
func (pr *PlaceResolver) synthetic(name, remoteID string, coord *domain.Coord) *domain.Place {
	if coord == nil && remoteID != "" {
		if c, ok := pr.reg.PlaceCoord(remoteID); ok {
			coord = &c
		}
	}
	id := "P" + strconv.Itoa(pr.reg.NextPlaceSeq())
	if remoteID != "" {
		id = "PFSID" + remoteID
	}
	place := &domain.Place{
		ID:    id,
		Name:  name,
		Kind:  domain.PlaceUnknown,
		Coord: coord,
	}
	pr.reg.AddPlace(place)
	return place
}
