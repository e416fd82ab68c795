package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
)

// Ensure Serializer implements the interface.
var _ driving.Exporter = (*Serializer)(nil)

// ordinanceStatus maps remote reservation statuses to output status tags.
var ordinanceStatus = map[string]string{
	"Completed":  "COMPLETED",
	"Cancelled":  "CANCELED",
	"InProgress": "SUBMITTED",
}

// Serializer emits a graph as a GEDCOM 5.5.1 document: header, individuals,
// families, sources and notes in stable id order, long values wrapped into
// continuation lines.
type Serializer struct {
	version string
	now     func() time.Time
}

// New creates a GEDCOM serializer stamping the given producer version into
// the header.
func New(version string) *Serializer {
	return &Serializer{version: version, now: time.Now}
}

// Export writes the whole graph. The input is expected to be a finished
// snapshot; entities are only read.
func (s *Serializer) Export(w io.Writer, g *domain.Graph) error {
	bw := bufio.NewWriter(w)
	s.header(bw, g)
	for _, p := range g.Persons {
		s.person(bw, p)
	}
	for _, f := range g.Families {
		s.family(bw, f)
	}
	for _, src := range g.Sources {
		s.source(bw, src)
	}
	var prev string
	for i, n := range g.Notes {
		// Consecutive notes sharing an id are the same deduplicated note
		// linked from several owners; emit it once.
		if i > 0 && n.ID() == prev {
			continue
		}
		prev = n.ID()
		bw.WriteString(wrap("0 @N" + n.ID() + "@ NOTE " + n.Text))
	}
	bw.WriteString("0 TRLR\n")
	return bw.Flush()
}

func (s *Serializer) header(w *bufio.Writer, g *domain.Graph) {
	now := s.now()
	w.WriteString("0 HEAD\n")
	w.WriteString("1 CHAR UTF-8\n")
	w.WriteString("1 GEDC\n")
	w.WriteString("2 VERS 5.5.1\n")
	w.WriteString("2 FORM LINEAGE-LINKED\n")
	w.WriteString("1 SOUR lineage\n")
	fmt.Fprintf(w, "2 VERS %s\n", s.version)
	w.WriteString("2 NAME lineage\n")
	fmt.Fprintf(w, "1 DATE %s\n", now.Format("02 Jan 2006"))
	fmt.Fprintf(w, "2 TIME %s\n", now.Format("15:04:05"))
	w.WriteString("1 SUBM @SUBM@\n")
	w.WriteString("0 @SUBM@ SUBM\n")
	fmt.Fprintf(w, "1 NAME %s\n", g.Submitter)
}

func (s *Serializer) person(w *bufio.Writer, p *domain.Person) {
	fmt.Fprintf(w, "0 @I%s@ INDI\n", p.RecordID())
	if p.Name != nil {
		s.name(w, p.Name, "")
	}
	for _, n := range p.Nicknames {
		w.WriteString(wrap("2 NICK " + n.Given + " " + n.Surname))
	}
	for _, n := range p.Birthnames {
		s.name(w, n, "")
	}
	for _, n := range p.AKA {
		s.name(w, n, "aka")
	}
	for _, n := range p.Married {
		s.name(w, n, "married")
	}
	if tag := p.Gender.Tag(); tag != "" {
		fmt.Fprintf(w, "1 SEX %s\n", tag)
	}
	for _, f := range p.Facts {
		s.fact(w, f)
	}
	for _, m := range p.Memories {
		s.memory(w, m)
	}
	if p.Baptism != nil {
		w.WriteString("1 BAPL\n")
		s.ordinance(w, p.Baptism)
	}
	if p.Confirmation != nil {
		w.WriteString("1 CONL\n")
		s.ordinance(w, p.Confirmation)
	}
	if p.Initiatory != nil {
		w.WriteString("1 WAC\n")
		s.ordinance(w, p.Initiatory)
	}
	if p.Endowment != nil {
		w.WriteString("1 ENDL\n")
		s.ordinance(w, p.Endowment)
	}
	if p.SealingToParents != nil {
		w.WriteString("1 SLGC\n")
		s.ordinance(w, p.SealingToParents)
	}
	for _, fam := range p.FamiliesAsSpouse {
		fmt.Fprintf(w, "1 FAMS @F%s@\n", fam.ID)
	}
	for _, fam := range p.FamiliesAsChild {
		fmt.Fprintf(w, "1 FAMC @F%s@\n", fam.ID)
	}
	fmt.Fprintf(w, "1 _FSFTID %s\n", p.ID)
	for _, n := range p.Notes {
		noteLink(w, n, 1)
	}
	for _, c := range p.Citations {
		fmt.Fprintf(w, "1 SOUR @%s@\n", c.Source.ID())
		if c.Message != "" {
			w.WriteString(wrap("2 PAGE " + c.Message))
		}
	}
}

func (s *Serializer) family(w *bufio.Writer, f *domain.Family) {
	fmt.Fprintf(w, "0 @F%s@ FAM\n", f.ID)
	if f.Husband != nil {
		fmt.Fprintf(w, "1 HUSB @I%s@\n", f.Husband.RecordID())
	}
	if f.Wife != nil {
		fmt.Fprintf(w, "1 WIFE @I%s@\n", f.Wife.RecordID())
	}
	for _, child := range f.Children {
		fmt.Fprintf(w, "1 CHIL @I%s@\n", child.RecordID())
	}
	for _, fact := range f.Facts {
		s.fact(w, fact)
	}
	if f.SealingToSpouse != nil {
		w.WriteString("1 SLGS\n")
		s.ordinance(w, f.SealingToSpouse)
	}
	if f.RelationshipID != "" {
		fmt.Fprintf(w, "1 _FSFTID %s\n", f.RelationshipID)
	}
	for _, n := range f.Notes {
		noteLink(w, n, 1)
	}
	for _, ref := range f.Sources {
		fmt.Fprintf(w, "1 SOUR @%s@\n", ref.Source.ID())
		if ref.Quote != "" {
			w.WriteString(wrap("2 PAGE " + ref.Quote))
		}
	}
}

func (s *Serializer) name(w *bufio.Writer, n *domain.Name, typ string) {
	line := "1 NAME " + n.Given + " /" + n.Surname + "/"
	if n.Suffix != "" {
		line += " " + n.Suffix
	}
	w.WriteString(wrap(line))
	if typ != "" {
		fmt.Fprintf(w, "2 TYPE %s\n", typ)
	}
	if n.Prefix != "" {
		fmt.Fprintf(w, "2 NPFX %s\n", n.Prefix)
	}
	if n.Note != nil {
		noteLink(w, n.Note, 2)
	}
}

func (s *Serializer) fact(w *bufio.Writer, f *domain.Fact) {
	if tag := f.Kind.Tag(); tag != "" {
		line := "1 " + tag
		if f.Value != "" {
			line += " " + f.Value
		}
		w.WriteString(wrap(line))
	} else if f.Label != "" {
		fmt.Fprintf(w, "1 EVEN\n2 TYPE %s\n", f.Label)
		if f.Value != "" {
			w.WriteString(wrap("2 NOTE Description: " + f.Value))
		}
	} else {
		return
	}
	if f.Date != "" {
		w.WriteString(wrap("2 DATE " + f.Date))
	}
	if f.Place != nil {
		w.WriteString(wrap("2 PLAC " + f.Place.Name))
		if c := f.Place.Coord; c != nil {
			fmt.Fprintf(w, "3 MAP\n4 LATI %s\n4 LONG %s\n",
				strconv.FormatFloat(c.Lat, 'g', -1, 64),
				strconv.FormatFloat(c.Lon, 'g', -1, 64))
		}
	}
	if f.Note != nil {
		noteLink(w, f.Note, 2)
	}
}

func (s *Serializer) memory(w *bufio.Writer, m *domain.Memory) {
	w.WriteString("1 OBJE\n2 FORM URL\n")
	if m.Description != "" {
		w.WriteString(wrap("2 TITL " + m.Description))
	}
	if m.URL != "" {
		w.WriteString(wrap("2 FILE " + m.URL))
	}
}

func (s *Serializer) ordinance(w *bufio.Writer, o *domain.Ordinance) {
	if o.Date != "" {
		w.WriteString(wrap("2 DATE " + o.Date))
	}
	if o.TempleCode != "" {
		fmt.Fprintf(w, "2 TEMP %s\n", o.TempleCode)
	}
	if status, ok := ordinanceStatus[o.Status]; ok {
		fmt.Fprintf(w, "2 STAT %s\n", status)
	}
	if o.Family != nil {
		fmt.Fprintf(w, "2 FAMC @F%s@\n", o.Family.ID)
	}
}

func (s *Serializer) source(w *bufio.Writer, src *domain.Source) {
	fmt.Fprintf(w, "0 @%s@ SOUR \n", src.ID())
	if src.Title != "" {
		w.WriteString(wrap("1 TITL " + src.Title))
	}
	if src.Citation != "" {
		w.WriteString(wrap("1 AUTH " + src.Citation))
	}
	if src.URL != "" {
		w.WriteString(wrap("1 PUBL " + src.URL))
	}
	for _, n := range src.Notes {
		noteLink(w, n, 1)
	}
	if src.RemoteID != "" {
		fmt.Fprintf(w, "1 REFN %s\n", src.RemoteID)
	}
}

func noteLink(w *bufio.Writer, n *domain.Note, level int) {
	fmt.Fprintf(w, "%d NOTE @N%s@\n", level, n.ID())
}
