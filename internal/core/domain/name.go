package domain

// NameKind tags a name form.
type NameKind int

const (
	NamePreferred NameKind = iota
	NameNickname
	NameBirth
	NameAKA
	NameMarried
	NameUnrecognized
)

// String returns the Gramps XML name type.
func (k NameKind) String() string {
	switch k {
	case NamePreferred:
		return "Preferred Name"
	case NameNickname:
		return "Nickname"
	case NameBirth:
		return "Birth Name"
	case NameAKA:
		return "Also Known As"
	case NameMarried:
		return "Married Name"
	default:
		return "Unknown"
	}
}

// Name is one name form of a person.
type Name struct {
	Kind        NameKind
	Given       string
	Surname     string
	Prefix      string
	Suffix      string
	Alternative bool  // not the preferred form
	Note        *Note // change-message note, if any
}
