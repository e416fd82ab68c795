package gedcomx

// TextValue is a {"value": "..."} wrapper used throughout the API.
type TextValue struct {
	Value string `json:"value"`
}

// Attribution carries provenance for a conclusion.
type Attribution struct {
	ChangeMessage string `json:"changeMessage"`
	Modified      int64  `json:"modified"`
}

// NamePart is one typed component of a name form.
type NamePart struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NameForm groups the parts of one rendering of a name.
type NameForm struct {
	FullText string     `json:"fullText"`
	Parts    []NamePart `json:"parts"`
}

// Name is a name conclusion on a person.
type Name struct {
	Type        string      `json:"type"`
	Preferred   bool        `json:"preferred"`
	NameForms   []NameForm  `json:"nameForms"`
	Attribution Attribution `json:"attribution"`
}

// Gender is the gender conclusion on a person.
type Gender struct {
	Type string `json:"type"`
}

// Date is a date conclusion; Formal is the normalized form when present.
type Date struct {
	Original string `json:"original"`
	Formal   string `json:"formal"`
}

// PlaceReference points at a place: the original text plus an optional
// "#<id>" description reference into the batch place list.
type PlaceReference struct {
	Original    string `json:"original"`
	Description string `json:"description"`
}

// Fact is an event or attribute conclusion.
type Fact struct {
	Type        string          `json:"type"`
	Value       string          `json:"value"`
	Date        *Date           `json:"date"`
	Place       *PlaceReference `json:"place"`
	Attribution Attribution     `json:"attribution"`
}

// ResourceReference points at another resource by id.
type ResourceReference struct {
	ResourceID string `json:"resourceId"`
}

// EvidenceReference links a person to a memory artifact.
type EvidenceReference struct {
	ID string `json:"id"`
}

// Person is a person record in a batch response.
type Person struct {
	ID       string              `json:"id"`
	Living   bool                `json:"living"`
	Names    []Name              `json:"names"`
	Gender   *Gender             `json:"gender"`
	Facts    []Fact              `json:"facts"`
	Sources  []SourceReference   `json:"sources"`
	Evidence []EvidenceReference `json:"evidence"`
	Notes    []Note              `json:"notes"`
}

// ChildAndParentsRelationship is a raw parent/child edge.
type ChildAndParentsRelationship struct {
	Parent1 *ResourceReference `json:"parent1"`
	Parent2 *ResourceReference `json:"parent2"`
	Child   *ResourceReference `json:"child"`
}

// Relationship is a generic relationship; couples carry TypeCouple.
type Relationship struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Person1 *ResourceReference `json:"person1"`
	Person2 *ResourceReference `json:"person2"`
	Facts   []Fact            `json:"facts"`
	Sources []SourceReference `json:"sources"`
	Notes   []Note            `json:"notes"`
}

// PlaceDescription is a place entry in the batch sidecar list.
type PlaceDescription struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PersonBatch is the response of the batched persons endpoint.
type PersonBatch struct {
	Persons                      []Person                      `json:"persons"`
	ChildAndParentsRelationships []ChildAndParentsRelationship `json:"childAndParentsRelationships"`
	Relationships                []Relationship                `json:"relationships"`
	Places                       []PlaceDescription            `json:"places"`
	SourceDescriptions           []SourceDescription           `json:"sourceDescriptions"`
}

// SourceReference attaches a source description to a record.
type SourceReference struct {
	ID            string      `json:"id"`
	DescriptionID string      `json:"descriptionId"`
	Attribution   Attribution `json:"attribution"`
}

// SourceDescription describes a source.
type SourceDescription struct {
	ID           string      `json:"id"`
	About        string      `json:"about"`
	MediaType    string      `json:"mediaType"`
	Citations    []TextValue `json:"citations"`
	Titles       []TextValue `json:"titles"`
	Descriptions []TextValue `json:"descriptions"`
	Notes        []Note      `json:"notes"`
	Attribution  Attribution `json:"attribution"`
}

// SourcesResult is the response of the person/couple sources endpoints:
// references on the record side plus the matching descriptions.
type SourcesResult struct {
	References         []SourceReference
	SourceDescriptions []SourceDescription
}

// Note is a user note on a person or relationship.
type Note struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Ordinance is one temple-ordinance record.
type Ordinance struct {
	CompletedDate   string `json:"completedDate"`
	CompletedTemple *struct {
		Code string `json:"code"`
	} `json:"completedTemple"`
	Status        string `json:"status"`
	Relationships struct {
		SpouseID  string `json:"spouseId"`
		Parent1ID string `json:"parent1Id"`
		Parent2ID string `json:"parent2Id"`
	} `json:"relationships"`
}

// OrdinancesResult is the full reservation record for one person.
type OrdinancesResult struct {
	Baptism           *Ordinance  `json:"baptism"`
	Confirmation      *Ordinance  `json:"confirmation"`
	Initiatory        *Ordinance  `json:"initiatory"`
	Endowment         *Ordinance  `json:"endowment"`
	SealingsToParents []Ordinance `json:"sealingsToParents"`
	SealingsToSpouses []Ordinance `json:"sealingsToSpouses"`
}

// UserInfo identifies the authenticated user.
type UserInfo struct {
	PersonID          string `json:"personId"`
	PreferredLanguage string `json:"preferredLanguage"`
	DisplayName       string `json:"displayName"`
}
