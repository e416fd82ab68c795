package grampsxml

import "encoding/xml"

// Element structs mirror the Gramps XML 1.7.1 schema. Field order matters:
// the encoder emits children in declaration order.

type database struct {
	XMLName   xml.Name     `xml:"database"`
	Xmlns     string       `xml:"xmlns,attr"`
	Header    header       `xml:"header"`
	People    peopleList   `xml:"people"`
	Families  familyList   `xml:"families"`
	Events    eventList    `xml:"events"`
	Notes     noteList     `xml:"notes"`
	Places    placeList    `xml:"places"`
	Sources   sourceList   `xml:"sources"`
	Citations citationList `xml:"citations"`
}

type header struct {
	Created    created `xml:"created"`
	Researcher struct {
		ResName string `xml:"resname"`
	} `xml:"researcher"`
}

type created struct {
	Date    string `xml:"date,attr"`
	Version string `xml:"version,attr"`
}

type peopleList struct {
	Persons []person `xml:"person"`
}

type familyList struct {
	Families []family `xml:"family"`
}

type eventList struct {
	Events []event `xml:"event"`
}

type noteList struct {
	Notes []note `xml:"note"`
}

type placeList struct {
	Places []place `xml:"placeobj"`
}

type sourceList struct {
	Sources []source `xml:"source"`
}

type citationList struct {
	Citations []citation `xml:"citation"`
}

// href is an attribute-only link to another entity's handle.
type href struct {
	HLink string `xml:"hlink,attr"`
}

type eventRef struct {
	HLink string `xml:"hlink,attr"`
	Role  string `xml:"role,attr"`
}

type attribute struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type person struct {
	Handle       string      `xml:"handle,attr"`
	ID           string      `xml:"id,attr"`
	Names        []name      `xml:"name"`
	Gender       string      `xml:"gender"`
	ParentIn     []href      `xml:"parentin"`
	ChildOf      []href      `xml:"childof"`
	Attributes   []attribute `xml:"attribute"`
	EventRefs    []eventRef  `xml:"eventref"`
	CitationRefs []href      `xml:"citationref"`
	NoteRefs     []href      `xml:"noteref"`
}

type name struct {
	Type    string `xml:"type,attr,omitempty"`
	Alt     string `xml:"alt,attr,omitempty"`
	First   string `xml:"first"`
	Surname string `xml:"surname"`
	NoteRef *href  `xml:"noteref,omitempty"`
}

type family struct {
	Handle    string     `xml:"handle,attr"`
	ID        string     `xml:"id,attr"`
	Rel       rel        `xml:"rel"`
	Father    *href      `xml:"father,omitempty"`
	Mother    *href      `xml:"mother,omitempty"`
	ChildRefs []href     `xml:"childref"`
	EventRefs []eventRef `xml:"eventref"`
}

type rel struct {
	Type string `xml:"type,attr"`
}

type event struct {
	Handle  string   `xml:"handle,attr"`
	ID      string   `xml:"id,attr"`
	Type    string   `xml:"type"`
	Date    *datestr `xml:"datestr,omitempty"`
	Place   *href    `xml:"place,omitempty"`
	NoteRef *href    `xml:"noteref,omitempty"`
}

type datestr struct {
	Val  string `xml:"val,attr"`
	Type string `xml:"type,attr,omitempty"`
}

type note struct {
	Handle string `xml:"handle,attr"`
	ID     string `xml:"id,attr"`
	Type   string `xml:"type,attr"`
	Text   string `xml:"text"`
}

type place struct {
	Handle   string `xml:"handle,attr"`
	ID       string `xml:"id,attr"`
	Type     string `xml:"type,attr"`
	PName    pname  `xml:"pname"`
	PlaceRef *href  `xml:"placeref,omitempty"`
	Coord    *coord `xml:"coord,omitempty"`
}

type pname struct {
	Value string `xml:"value,attr"`
}

type coord struct {
	Long string `xml:"long,attr"`
	Lat  string `xml:"lat,attr"`
}

type source struct {
	Handle   string     `xml:"handle,attr"`
	Change   string     `xml:"change,attr"`
	ID       string     `xml:"id,attr"`
	STitle   string     `xml:"stitle,omitempty"`
	SAuthor  string     `xml:"sauthor,omitempty"`
	SPubInfo string     `xml:"spubinfo,omitempty"`
	SrcAttr  *attribute `xml:"srcattribute,omitempty"`
}

type citation struct {
	Handle     string `xml:"handle,attr"`
	Change     string `xml:"change,attr"`
	ID         string `xml:"id,attr"`
	Confidence string `xml:"confidence"`
	SourceRef  href   `xml:"sourceref"`
}
