package domain

// PlaceKind classifies an administrative level in the place hierarchy.
type PlaceKind int

const (
	PlaceUnknown PlaceKind = iota
	PlaceCountry
	PlaceCounty
	PlaceCity
)

// String returns the Gramps XML place type.
func (k PlaceKind) String() string {
	switch k {
	case PlaceCountry:
		return "Country"
	case PlaceCounty:
		return "County"
	case PlaceCity:
		return "City"
	default:
		return "Unknown"
	}
}

// Coord is a latitude/longitude pair.
type Coord struct {
	Lat float64
	Lon float64
}

// Place is a resolved place. Parent is a weak structural link forming the
// administrative hierarchy tree; it never implies ownership.
type Place struct {
	Handle string
	ID     string
	Name   string
	Kind   PlaceKind
	Parent *Place
	Coord  *Coord
}
