package grampsxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
)

const (
	xmlns   = "http://gramps-project.org/xml/1.7.1/"
	doctype = `<!DOCTYPE database PUBLIC "-//Gramps//DTD Gramps XML 1.7.1//EN" "http://gramps-project.org/xml/1.7.1/grampsxml.dtd">`

	// schemaVersion is the Gramps release whose schema the document claims.
	schemaVersion = "5.2.2"
)

// Ensure Serializer implements the interface.
var _ driving.Exporter = (*Serializer)(nil)

// Serializer emits a graph as a Gramps XML 1.7.1 database. Every entity
// becomes one flat element in its section; cross-references are hlink
// attributes pointing at the target's handle.
type Serializer struct {
	now func() time.Time
}

// New creates a Gramps XML serializer.
func New() *Serializer {
	return &Serializer{now: time.Now}
}

// Export writes the whole graph as a single document.
func (s *Serializer) Export(w io.Writer, g *domain.Graph) error {
	doc := database{
		Xmlns:  xmlns,
		Header: header{Created: created{Date: s.now().Format("2006-01-02"), Version: schemaVersion}},
	}
	doc.Header.Researcher.ResName = g.Submitter

	for _, p := range g.Persons {
		doc.People.Persons = append(doc.People.Persons, personElem(p))
	}
	for _, f := range g.Families {
		doc.Families.Families = append(doc.Families.Families, familyElem(f))
	}
	for _, f := range g.Facts {
		doc.Events.Events = append(doc.Events.Events, eventElem(f))
	}
	for _, n := range g.Notes {
		doc.Notes.Notes = append(doc.Notes.Notes, note{
			Handle: n.Handle,
			ID:     n.ID(),
			Type:   n.Kind.String(),
			Text:   n.Text,
		})
	}
	for _, p := range g.Places {
		doc.Places.Places = append(doc.Places.Places, placeElem(p))
	}
	for _, src := range g.Sources {
		doc.Sources.Sources = append(doc.Sources.Sources, sourceElem(src))
	}
	for _, c := range g.Citations {
		doc.Citations.Citations = append(doc.Citations.Citations, citation{
			Handle:     c.Handle,
			Change:     strconv.FormatInt(c.Modified/1000, 10),
			ID:         c.ID(),
			Confidence: "2",
			SourceRef:  href{HLink: c.Source.Handle},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, doctype+"\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return enc.Close()
}

func personElem(p *domain.Person) person {
	out := person{
		Handle: p.Handle,
		ID:     "I" + p.RecordID(),
		Gender: p.Gender.Tag(),
	}
	if p.Name != nil {
		out.Names = append(out.Names, nameElem(p.Name))
	}
	for _, group := range [][]*domain.Name{p.Nicknames, p.Birthnames, p.AKA, p.Married} {
		for _, n := range group {
			out.Names = append(out.Names, nameElem(n))
		}
	}
	for _, fam := range p.FamiliesAsSpouse {
		out.ParentIn = append(out.ParentIn, href{HLink: fam.Handle})
	}
	for _, fam := range p.FamiliesAsChild {
		out.ChildOf = append(out.ChildOf, href{HLink: fam.Handle})
	}
	out.Attributes = []attribute{{Type: "_FSFTID", Value: p.ID}}
	for _, f := range p.Facts {
		out.EventRefs = append(out.EventRefs, eventRef{HLink: f.Handle, Role: "Primary"})
	}
	for _, c := range p.Citations {
		out.CitationRefs = append(out.CitationRefs, href{HLink: c.Handle})
	}
	for _, n := range p.Notes {
		out.NoteRefs = append(out.NoteRefs, href{HLink: n.Handle})
	}
	return out
}

func nameElem(n *domain.Name) name {
	out := name{
		Type:    n.Kind.String(),
		First:   n.Given,
		Surname: n.Surname,
	}
	if n.Alternative {
		out.Alt = "1"
	}
	if n.Note != nil {
		out.NoteRef = &href{HLink: n.Note.Handle}
	}
	return out
}

func familyElem(f *domain.Family) family {
	out := family{
		Handle: f.Handle,
		ID:     f.ID,
		Rel:    rel{Type: "Unknown"},
	}
	if f.Husband != nil {
		out.Father = &href{HLink: f.Husband.Handle}
	}
	if f.Wife != nil {
		out.Mother = &href{HLink: f.Wife.Handle}
	}
	for _, child := range f.Children {
		out.ChildRefs = append(out.ChildRefs, href{HLink: child.Handle})
	}
	for _, fact := range f.Facts {
		out.EventRefs = append(out.EventRefs, eventRef{HLink: fact.Handle, Role: "Primary"})
	}
	return out
}

func eventElem(f *domain.Fact) event {
	out := event{
		Handle: f.Handle,
		ID:     f.ID,
		Type:   f.Label,
	}
	if f.Date != "" {
		out.Date = &datestr{Val: f.Date, Type: f.DateQualifier.String()}
	}
	if f.Place != nil {
		out.Place = &href{HLink: f.Place.Handle}
	}
	if f.Note != nil {
		out.NoteRef = &href{HLink: f.Note.Handle}
	}
	return out
}

func placeElem(p *domain.Place) place {
	out := place{
		Handle: p.Handle,
		ID:     p.ID,
		Type:   p.Kind.String(),
		PName:  pname{Value: p.Name},
	}
	if p.Parent != nil {
		out.PlaceRef = &href{HLink: p.Parent.Handle}
	}
	if c := p.Coord; c != nil && c.Lat != 0 && c.Lon != 0 {
		out.Coord = &coord{
			Long: strconv.FormatFloat(c.Lon, 'g', -1, 64),
			Lat:  strconv.FormatFloat(c.Lat, 'g', -1, 64),
		}
	}
	return out
}

func sourceElem(s *domain.Source) source {
	out := source{
		Handle:   s.Handle,
		Change:   strconv.FormatInt(s.Modified/1000, 10),
		ID:       s.ID(),
		STitle:   s.Title,
		SAuthor:  s.Citation,
		SPubInfo: s.URL,
	}
	if s.RemoteID != "" {
		out.SrcAttr = &attribute{Type: "REFN", Value: s.RemoteID}
	}
	return out
}
