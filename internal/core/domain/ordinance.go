package domain

// Ordinance is an LDS temple-rite record attached to a person or family.
type Ordinance struct {
	Date       string
	TempleCode string
	Status     string
	// Family is set on sealing-to-parents ordinances once the family is known.
	Family *Family
}

// Memory is a media artifact (photo, document scan) linked from a person.
type Memory struct {
	Description string
	URL         string
}
