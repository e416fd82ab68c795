package gedcomx

import (
	"net/url"
	"strings"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
)

// Vocabulary URIs used by the tree service.
const (
	TypeCouple     = "http://gedcomx.org/Couple"
	TypeMale       = "http://gedcomx.org/Male"
	TypeFemale     = "http://gedcomx.org/Female"
	TypeUnknown    = "http://gedcomx.org/Unknown"
	TypeGiven      = "http://gedcomx.org/Given"
	TypeSurname    = "http://gedcomx.org/Surname"
	TypePrefix     = "http://gedcomx.org/Prefix"
	TypeSuffix     = "http://gedcomx.org/Suffix"
	TypeBirthName  = "http://gedcomx.org/BirthName"
	TypeNickname   = "http://gedcomx.org/Nickname"
	TypeAKA        = "http://gedcomx.org/AlsoKnownAs"
	TypeMarried    = "http://gedcomx.org/MarriedName"
	TypeDeath      = "http://gedcomx.org/Death"
	TypeLifeSketch = "http://familysearch.org/v1/LifeSketch"

	uriPrefix = "http://gedcomx.org/"
	// Custom fact types arrive URL-encoded behind a data URI.
	dataPrefix = "data:,"
)

// GenderFromURI maps a gender conclusion type to the domain enum.
func GenderFromURI(uri string) domain.Gender {
	switch uri {
	case TypeMale:
		return domain.GenderMale
	case TypeFemale:
		return domain.GenderFemale
	case TypeUnknown:
		return domain.GenderUnknown
	default:
		return domain.GenderUnset
	}
}

// NameKindFromURI maps a name conclusion type to the domain enum.
func NameKindFromURI(uri string) domain.NameKind {
	switch uri {
	case TypeNickname:
		return domain.NameNickname
	case TypeBirthName:
		return domain.NameBirth
	case TypeAKA:
		return domain.NameAKA
	case TypeMarried:
		return domain.NameMarried
	case "":
		return domain.NamePreferred
	default:
		return domain.NameUnrecognized
	}
}

// factKinds maps vocabulary URIs to fact kinds with a dedicated output tag.
var factKinds = map[string]domain.FactKind{
	"http://gedcomx.org/Birth":           domain.FactBirth,
	"http://gedcomx.org/Christening":     domain.FactChristening,
	"http://gedcomx.org/Death":           domain.FactDeath,
	"http://gedcomx.org/Burial":          domain.FactBurial,
	"http://gedcomx.org/Cremation":       domain.FactCremation,
	"http://gedcomx.org/Baptism":         domain.FactBaptism,
	"http://gedcomx.org/Marriage":        domain.FactMarriage,
	"http://gedcomx.org/Divorce":         domain.FactDivorce,
	"http://gedcomx.org/Residence":       domain.FactResidence,
	"http://gedcomx.org/Occupation":      domain.FactOccupation,
	"http://gedcomx.org/Immigration":     domain.FactImmigration,
	"http://gedcomx.org/Emigration":      domain.FactEmigration,
	"http://gedcomx.org/Naturalization":  domain.FactNaturalization,
	"http://gedcomx.org/MilitaryService": domain.FactMilitaryService,
	"http://gedcomx.org/Religion":        domain.FactReligion,
}

// factEvents are recognized types without a dedicated tag; they are emitted
// through the generic event fallback under their display label.
var factEvents = map[string]struct{}{
	"http://gedcomx.org/Stillbirth":          {},
	"http://gedcomx.org/TitleOfNobility":     {},
	"http://gedcomx.org/Caste":               {},
	"http://gedcomx.org/Nationality":         {},
	"http://gedcomx.org/PhysicalDescription": {},
	"http://gedcomx.org/NationalId":          {},
}

// FactKindFromURI classifies a fact type URI and returns the kind together
// with its display label. Unrecognized URIs yield FactUnrecognized; callers
// decide whether to drop the fact or surface it.
func FactKindFromURI(uri string) (domain.FactKind, string) {
	if kind, ok := factKinds[uri]; ok {
		return kind, strings.TrimPrefix(uri, uriPrefix)
	}
	if strings.HasPrefix(uri, dataPrefix) {
		label := uri[len(dataPrefix):]
		if dec, err := url.QueryUnescape(label); err == nil {
			label = dec
		}
		return domain.FactCustom, label
	}
	if _, ok := factEvents[uri]; ok {
		return domain.FactOther, strings.TrimPrefix(uri, uriPrefix)
	}
	return domain.FactUnrecognized, strings.TrimPrefix(uri, uriPrefix)
}

// ParseFormalDate splits a normalized date ("+1854-06-02", "A+1854", ...)
// into the bare date and its qualifier.
func ParseFormalDate(formal string) (string, domain.DateQualifier) {
	qualifier := domain.DateExact
	switch {
	case strings.HasPrefix(formal, "A+"):
		qualifier = domain.DateAbout
	case strings.HasPrefix(formal, "/+"):
		qualifier = domain.DateBefore
	}
	if strings.HasSuffix(formal, "/") {
		qualifier = domain.DateAfter
	}
	date := formal
	if i := strings.LastIndex(date, "+"); i >= 0 {
		date = date[i+1:]
	}
	date = strings.SplitN(date, "/", 2)[0]
	return date, qualifier
}
