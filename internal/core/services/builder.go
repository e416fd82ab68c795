package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
	"github.com/custodia-labs/lineage-cli/internal/logger"
)

const (
	// MaxBatch is the service cap on person ids per batch request.
	MaxBatch = 200

	// DefaultWorkers bounds the parallel person-build fan-out per batch.
	DefaultWorkers = 8
)

// Ensure Builder implements the interface.
var _ driving.GraphBuilder = (*Builder)(nil)

// Builder expands the entity graph by fetching batches from the data source
// and materializing persons, families and their relationships. Within one
// batch, person subrecords are built by bounded parallel workers; the
// relationship edges returned alongside the batch are applied only after
// every build task has joined.
type Builder struct {
	reg     *Registry
	src     driven.DataSource
	places  *PlaceResolver
	exclude map[string]struct{}
	workers int
}

// NewBuilder creates a graph builder. exclude lists individual ids that must
// never enter the tree.
func NewBuilder(reg *Registry, src driven.DataSource, places *PlaceResolver, exclude []string) *Builder {
	ex := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		ex[id] = struct{}{}
	}
	return &Builder{
		reg:     reg,
		src:     src,
		places:  places,
		exclude: ex,
		workers: DefaultWorkers,
	}
}

// Known returns the ids of all individuals built so far.
func (b *Builder) Known() driving.Set {
	return b.reg.PersonIDs()
}

// Snapshot freezes the graph for serialization.
func (b *Builder) Snapshot() *domain.Graph {
	return b.reg.Snapshot()
}

// AddIndividuals fetches and builds persons for every id not already known.
// Ids in the exclusion set are skipped; dedup guarantees at most one fetch
// per id per run.
func (b *Builder) AddIndividuals(ctx context.Context, ids []string) error {
	var pending []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := b.exclude[id]; ok {
			logger.Info("Excluding %s from the family tree", id)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := b.reg.Person(id); !ok {
			pending = append(pending, id)
		}
	}

	for len(pending) > 0 {
		chunk := pending
		if len(chunk) > MaxBatch {
			chunk = chunk[:MaxBatch]
		}
		pending = pending[len(chunk):]

		if err := b.fetchChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// fetchChunk retrieves one batch and applies it: place sidecar first, then
// person builds under the worker pool, then relationship edges once all
// builds have joined.
func (b *Builder) fetchChunk(ctx context.Context, ids []string) error {
	batch, err := b.src.FetchBatch(ctx, ids)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A failed batch means no data for these ids, never a dead run.
		logger.Warn("Batch fetch failed: %v", err)
		return nil
	}
	if batch == nil {
		return nil
	}

	for _, place := range batch.Places {
		b.reg.CachePlaceCoord(place.ID, domain.Coord{Lat: place.Latitude, Lon: place.Longitude})
	}

	type task struct {
		person  *domain.Person
		payload *gedcomx.Person
	}
	var tasks []task
	for i := range batch.Persons {
		payload := &batch.Persons[i]
		person, _ := b.reg.EnsurePerson(payload.ID)
		tasks = append(tasks, task{person: person, payload: payload})
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers)
	for _, t := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(t task) {
			defer wg.Done()
			defer func() { <-sem }()
			b.buildPerson(ctx, t.person, t.payload)
		}(t)
	}
	wg.Wait()

	// Relationship edges are applied only after the join barrier above, so
	// no build task ever sees a half-linked person.
	for _, rel := range batch.ChildAndParentsRelationships {
		father := resourceID(rel.Parent1)
		mother := resourceID(rel.Parent2)
		child := resourceID(rel.Child)
		if p, ok := b.reg.Person(child); ok {
			p.Parents[domain.ParentPair{Father: father, Mother: mother}] = struct{}{}
		}
		edge := domain.ChildEdge{Father: father, Mother: mother, Child: child}
		if p, ok := b.reg.Person(father); ok {
			p.Children[edge] = struct{}{}
		}
		if p, ok := b.reg.Person(mother); ok {
			p.Children[edge] = struct{}{}
		}
	}
	for _, rel := range batch.Relationships {
		if rel.Type != gedcomx.TypeCouple {
			continue
		}
		edge := domain.CoupleEdge{
			Person1:        resourceID(rel.Person1),
			Person2:        resourceID(rel.Person2),
			RelationshipID: rel.ID,
		}
		if p, ok := b.reg.Person(edge.Person1); ok {
			p.Spouses[edge] = struct{}{}
		}
		if p, ok := b.reg.Person(edge.Person2); ok {
			p.Spouses[edge] = struct{}{}
		}
	}
	return nil
}

func resourceID(r *gedcomx.ResourceReference) string {
	if r == nil {
		return ""
	}
	return r.ResourceID
}

// buildPerson fills one individual from its batch payload, issuing further
// detail calls for sources and memories. It only ever mutates its own
// person; shared state is reached through the registry.
func (b *Builder) buildPerson(ctx context.Context, p *domain.Person, data *gedcomx.Person) {
	p.Living = data.Living
	scope := "INDI_" + p.ID

	for i := range data.Names {
		b.addName(p, &data.Names[i])
	}
	if data.Gender != nil {
		p.Gender = gedcomx.GenderFromURI(data.Gender.Type)
	}

	for i := range data.Facts {
		fact := &data.Facts[i]
		if fact.Type == gedcomx.TypeLifeSketch {
			note := b.reg.NewNote("=== Life Sketch ===\n"+fact.Value, scope, domain.NotePerson)
			p.Notes = append(p.Notes, note)
			continue
		}
		if f := b.newFact(ctx, fact, scope); f != nil {
			p.Facts = append(p.Facts, f)
		}
	}

	if len(data.Sources) > 0 {
		b.addPersonSources(ctx, p)
	}
	for _, ev := range data.Evidence {
		b.addMemory(ctx, p, ev.ID)
	}
}

// addName records one name conclusion. The preferred name becomes the
// person's primary name whatever its type URI says, even when the type is
// absent. Every other name is bucketed by type; unrecognized types on
// alternatives are remote schema drift: warn and drop.
func (b *Builder) addName(p *domain.Person, data *gedcomx.Name) {
	kind := gedcomx.NameKindFromURI(data.Type)
	name := &domain.Name{Kind: kind, Alternative: !data.Preferred}
	if len(data.NameForms) > 0 {
		for _, part := range data.NameForms[0].Parts {
			switch part.Type {
			case gedcomx.TypeGiven:
				name.Given = part.Value
			case gedcomx.TypeSurname:
				name.Surname = part.Value
			case gedcomx.TypePrefix:
				name.Prefix = part.Value
			case gedcomx.TypeSuffix:
				name.Suffix = part.Value
			}
		}
	}
	if data.Attribution.ChangeMessage != "" {
		name.Note = b.reg.NewNote(data.Attribution.ChangeMessage,
			"NAME_"+p.ID+"_"+nameScope(kind), domain.NoteName)
	}

	if data.Preferred {
		if p.Name == nil {
			p.Name = name
		}
		return
	}
	switch kind {
	case domain.NameNickname:
		p.Nicknames = append(p.Nicknames, name)
	case domain.NameBirth:
		p.Birthnames = append(p.Birthnames, name)
	case domain.NameAKA:
		p.AKA = append(p.AKA, name)
	case domain.NameMarried:
		p.Married = append(p.Married, name)
	default:
		logger.Warn("Unknown name type %q on %s", data.Type, p.ID)
	}
}

func nameScope(kind domain.NameKind) string {
	switch kind {
	case domain.NameNickname:
		return "nickname"
	case domain.NameBirth:
		return "birthname"
	case domain.NameAKA:
		return "aka"
	case domain.NameMarried:
		return "married"
	default:
		return "preferred"
	}
}

// newFact builds a Fact from its payload under the given id scope.
// Unrecognized fact types are dropped (upstream schema drift must never
// abort the traversal). Returns nil when the fact is dropped.
func (b *Builder) newFact(ctx context.Context, data *gedcomx.Fact, scope string) *domain.Fact {
	kind, label := gedcomx.FactKindFromURI(data.Type)
	if kind == domain.FactUnrecognized {
		logger.Warn("Dropping unrecognized fact type %q", data.Type)
		return nil
	}

	f := &domain.Fact{Kind: kind, Label: label, Value: data.Value}
	if data.Date != nil {
		if data.Date.Formal != "" {
			f.Date, f.DateQualifier = gedcomx.ParseFormalDate(data.Date.Formal)
		} else {
			f.Date = data.Date.Original
		}
	}
	if data.Place != nil {
		remoteID := strings.TrimPrefix(data.Place.Description, "#")
		f.Place = b.places.Resolve(ctx, data.Place.Original, remoteID, nil)
	}
	// A death with neither date nor place is still a death.
	if kind == domain.FactDeath && f.Date == "" && f.Place == nil {
		f.Value = "Y"
	}
	b.reg.AddFact(f, scope)
	if data.Attribution.ChangeMessage != "" {
		f.Note = b.reg.NewNote(data.Attribution.ChangeMessage, "E"+factPrefix(scope, kind), domain.NoteEvent)
	}
	return f
}

// factPrefix mirrors the scope widening done by Registry.AddFact.
func factPrefix(scope string, kind domain.FactKind) string {
	if tag := kind.Tag(); tag != "" {
		return scope + "_" + tag
	}
	return scope
}

// addPersonSources retrieves the person's source references and attaches
// citations for each resolvable description.
func (b *Builder) addPersonSources(ctx context.Context, p *domain.Person) {
	res, err := b.src.PersonSources(ctx, p.ID)
	if err != nil {
		logger.Warn("Sources for %s: %v", p.ID, err)
		return
	}
	if res == nil {
		return
	}
	for i := range res.References {
		ref := &res.References[i]
		desc := findDescription(res.SourceDescriptions, ref.DescriptionID)
		if desc == nil {
			continue
		}
		source := b.reg.EnsureSource(desc)
		p.Citations = append(p.Citations, b.reg.EnsureCitation(ref, source))
	}
}

func findDescription(descs []gedcomx.SourceDescription, id string) *gedcomx.SourceDescription {
	for i := range descs {
		if descs[i].ID == id {
			return &descs[i]
		}
	}
	return nil
}

// addMemory retrieves one memory artifact. Plain-text artifacts become
// person notes, everything else a media object.
func (b *Builder) addMemory(ctx context.Context, p *domain.Person, evidenceID string) {
	memoryID, _, _ := strings.Cut(evidenceID, "-")
	descs, err := b.src.Memory(ctx, memoryID)
	if err != nil {
		logger.Warn("Memory %s: %v", memoryID, err)
		return
	}
	for i := range descs {
		desc := &descs[i]
		if desc.MediaType == "text/plain" {
			var parts []string
			for _, tv := range desc.Titles {
				parts = append(parts, tv.Value)
			}
			for _, tv := range desc.Descriptions {
				parts = append(parts, tv.Value)
			}
			note := b.reg.NewNote(strings.Join(parts, "\n"), "INDI_"+p.ID, domain.NotePerson)
			p.Notes = append(p.Notes, note)
			continue
		}
		mem := &domain.Memory{URL: desc.About}
		if len(desc.Titles) > 0 {
			mem.Description = desc.Titles[0].Value
		}
		if len(desc.Descriptions) > 0 {
			if mem.Description != "" {
				mem.Description += "\n"
			}
			mem.Description += desc.Descriptions[0].Value
		}
		p.Memories = append(p.Memories, mem)
	}
}

// AddParents fetches all referenced parents not yet known and materializes a
// family for every child whose relation has at least one resolvable parent.
// Returns the newly referenced parent ids for frontier advancement.
func (b *Builder) AddParents(ctx context.Context, frontier driving.Set) (driving.Set, error) {
	parents := make(driving.Set)
	for id := range frontier {
		person, ok := b.reg.Person(id)
		if !ok {
			continue
		}
		for pair := range person.Parents {
			if pair.Father != "" {
				parents[pair.Father] = struct{}{}
			}
			if pair.Mother != "" {
				parents[pair.Mother] = struct{}{}
			}
		}
	}
	if len(parents) > 0 {
		if err := b.AddIndividuals(ctx, setToSlice(parents)); err != nil {
			return nil, err
		}
	}
	for id := range frontier {
		child, ok := b.reg.Person(id)
		if !ok {
			continue
		}
		for pair := range child.Parents {
			father, fatherKnown := b.reg.Person(pair.Father)
			mother, motherKnown := b.reg.Person(pair.Mother)
			// A single resolvable parent still yields a family with the
			// absent slot left empty; neither resolvable drops the relation.
			if (fatherKnown && motherKnown) ||
				(pair.Father == "" && motherKnown) ||
				(pair.Mother == "" && fatherKnown) {
				b.addTrio(father, mother, child)
			}
		}
	}
	return parents, nil
}

// AddChildren is the symmetric operation over child edges. Returns the ids
// of linked children.
func (b *Builder) AddChildren(ctx context.Context, frontier driving.Set) (driving.Set, error) {
	edges := make(map[domain.ChildEdge]struct{})
	for id := range frontier {
		if person, ok := b.reg.Person(id); ok {
			for edge := range person.Children {
				edges[edge] = struct{}{}
			}
		}
	}
	children := make(driving.Set)
	if len(edges) == 0 {
		return children, nil
	}

	var ids []string
	for edge := range edges {
		ids = append(ids, edge.Father, edge.Mother, edge.Child)
	}
	if err := b.AddIndividuals(ctx, ids); err != nil {
		return nil, err
	}
	for edge := range edges {
		child, childKnown := b.reg.Person(edge.Child)
		if !childKnown {
			continue
		}
		father, fatherKnown := b.reg.Person(edge.Father)
		mother, motherKnown := b.reg.Person(edge.Mother)
		if (fatherKnown && motherKnown) ||
			(edge.Father == "" && motherKnown) ||
			(edge.Mother == "" && fatherKnown) {
			b.addTrio(father, mother, child)
			children[edge.Child] = struct{}{}
		}
	}
	return children, nil
}

// addTrio materializes the family for a parent pair and links the child.
func (b *Builder) addTrio(father, mother, child *domain.Person) {
	fam := b.reg.EnsureFamily(father, mother)
	if child != nil {
		fam.AddChild(child)
		child.AddFamilyAsChild(fam)
	}
	if father != nil {
		father.AddFamilyAsSpouse(fam)
	}
	if mother != nil {
		mother.AddFamilyAsSpouse(fam)
	}
}

// AddSpouses fetches missing spouses for every couple edge in the frontier,
// materializes the families, then retrieves marriage details with bounded
// workers, exactly once per family.
func (b *Builder) AddSpouses(ctx context.Context, frontier driving.Set) error {
	edges := make(map[domain.CoupleEdge]struct{})
	for id := range frontier {
		if person, ok := b.reg.Person(id); ok {
			for edge := range person.Spouses {
				edges[edge] = struct{}{}
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	var ids []string
	for edge := range edges {
		ids = append(ids, edge.Person1, edge.Person2)
	}
	if err := b.AddIndividuals(ctx, ids); err != nil {
		return err
	}

	// Claim marriage-detail fetches sequentially so each family is fetched
	// at most once, then run the network work in parallel.
	var claimed []*domain.Family
	for edge := range edges {
		if _, ok := b.exclude[edge.Person1]; ok {
			continue
		}
		if _, ok := b.exclude[edge.Person2]; ok {
			continue
		}
		p1, ok1 := b.reg.Person(edge.Person1)
		p2, ok2 := b.reg.Person(edge.Person2)
		if !ok1 || !ok2 {
			continue
		}
		fam := b.reg.EnsureFamily(p1, p2)
		p1.AddFamilyAsSpouse(fam)
		p2.AddFamilyAsSpouse(fam)
		if !fam.Fetched() {
			fam.RelationshipID = edge.RelationshipID
			claimed = append(claimed, fam)
		}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers)
	for _, fam := range claimed {
		wg.Add(1)
		sem <- struct{}{}
		go func(fam *domain.Family) {
			defer wg.Done()
			defer func() { <-sem }()
			b.addMarriage(ctx, fam)
		}(fam)
	}
	wg.Wait()
	return nil
}

// addMarriage retrieves the facts and sources of one couple relationship.
func (b *Builder) addMarriage(ctx context.Context, fam *domain.Family) {
	data, err := b.src.CoupleRelationship(ctx, fam.RelationshipID)
	if err != nil {
		logger.Warn("Couple relationship %s: %v", fam.RelationshipID, err)
		return
	}
	if data == nil {
		return
	}
	scope := "FAM_" + fam.RelationshipID
	for i := range data.Facts {
		if f := b.newFact(ctx, &data.Facts[i], scope); f != nil {
			fam.Facts = append(fam.Facts, f)
		}
	}
	if len(data.Sources) == 0 {
		return
	}

	descs, err := b.src.CoupleSources(ctx, fam.RelationshipID)
	if err != nil {
		logger.Warn("Couple sources %s: %v", fam.RelationshipID, err)
		descs = nil
	}
	for i := range data.Sources {
		ref := &data.Sources[i]
		desc := findDescription(descs, ref.DescriptionID)
		if desc == nil {
			continue
		}
		source := b.reg.EnsureSource(desc)
		fam.Sources = append(fam.Sources, domain.SourceRef{
			Source: source,
			Quote:  ref.Attribution.ChangeMessage,
		})
	}
}

// AddOrdinances fetches temple-ordinance data for one individual. Denied
// access is recorded as a warning, never a failure.
func (b *Builder) AddOrdinances(ctx context.Context, id string) error {
	person, ok := b.reg.Person(id)
	if !ok || person.Living {
		return nil
	}
	data, err := b.src.Ordinances(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRestricted) {
			logger.Warn("Ordinances for %s are restricted; try an LDS account", id)
			return nil
		}
		logger.Warn("Ordinances for %s: %v", id, err)
		return nil
	}
	if data == nil {
		return nil
	}

	person.Baptism = convertOrdinance(data.Baptism)
	person.Confirmation = convertOrdinance(data.Confirmation)
	person.Initiatory = convertOrdinance(data.Initiatory)
	person.Endowment = convertOrdinance(data.Endowment)

	for i := range data.SealingsToParents {
		o := &data.SealingsToParents[i]
		ord := convertOrdinance(o)
		if o.Relationships.Parent1ID != "" && o.Relationships.Parent2ID != "" {
			if fam, ok := b.reg.FamilyByPair(o.Relationships.Parent1ID, o.Relationships.Parent2ID); ok {
				ord.Family = fam
			}
		}
		person.SealingToParents = ord
	}
	for i := range data.SealingsToSpouses {
		o := &data.SealingsToSpouses[i]
		spouse := o.Relationships.SpouseID
		if fam, ok := b.reg.FamilyByPair(id, spouse); ok {
			b.reg.SetSealingToSpouse(fam, convertOrdinance(o))
		} else if fam, ok := b.reg.FamilyByPair(spouse, id); ok {
			b.reg.SetSealingToSpouse(fam, convertOrdinance(o))
		}
	}
	return nil
}

func convertOrdinance(o *gedcomx.Ordinance) *domain.Ordinance {
	if o == nil {
		return nil
	}
	ord := &domain.Ordinance{Date: o.CompletedDate, Status: o.Status}
	if o.CompletedTemple != nil {
		ord.TempleCode = o.CompletedTemple.Code
	}
	return ord
}

// SupplementOptions selects the per-entity detail passes run after the
// traversal: user notes always, plus ordinances and contributors on demand.
type SupplementOptions struct {
	Ordinances   bool
	Contributors bool
}

// FetchSupplements retrieves notes (and optionally ordinances and
// contributor lists) for every known person and family. One worker per
// person or family record; the one cross-entity write, a couple sealing
// landing on the family shared by both spouses' workers, goes through the
// registry mutex.
func (b *Builder) FetchSupplements(ctx context.Context, opts SupplementOptions) {
	g := b.reg.Snapshot()

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers)
	run := func(fn func()) {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn()
		}()
	}

	for _, person := range g.Persons {
		p := person
		run(func() {
			b.fetchPersonNotes(ctx, p)
			if opts.Ordinances {
				_ = b.AddOrdinances(ctx, p.ID)
			}
			if opts.Contributors {
				b.fetchPersonContributors(ctx, p)
			}
		})
	}
	for _, family := range g.Families {
		f := family
		if !f.Fetched() {
			continue
		}
		run(func() {
			b.fetchFamilyNotes(ctx, f)
			if opts.Contributors {
				b.fetchFamilyContributors(ctx, f)
			}
		})
	}
	wg.Wait()
}

func (b *Builder) fetchPersonNotes(ctx context.Context, p *domain.Person) {
	notes, err := b.src.PersonNotes(ctx, p.ID)
	if err != nil {
		logger.Warn("Notes for %s: %v", p.ID, err)
		return
	}
	for _, n := range notes {
		p.Notes = append(p.Notes, b.reg.NewNote(noteText(n), "INDI_"+p.ID, domain.NotePerson))
	}
}

func (b *Builder) fetchPersonContributors(ctx context.Context, p *domain.Person) {
	names, err := b.src.PersonContributors(ctx, p.ID)
	if err != nil {
		logger.Warn("Contributors for %s: %v", p.ID, err)
		return
	}
	if note := b.contributionNote(names, "INDI_"+p.ID); note != nil {
		p.Notes = append(p.Notes, note)
	}
}

func (b *Builder) fetchFamilyNotes(ctx context.Context, f *domain.Family) {
	notes, err := b.src.CoupleNotes(ctx, f.RelationshipID)
	if err != nil {
		logger.Warn("Notes for family %s: %v", f.ID, err)
		return
	}
	for _, n := range notes {
		f.Notes = append(f.Notes, b.reg.NewNote(noteText(n), "FAM_"+f.RelationshipID, domain.NoteMarriage))
	}
}

func (b *Builder) fetchFamilyContributors(ctx context.Context, f *domain.Family) {
	names, err := b.src.CoupleContributors(ctx, f.RelationshipID)
	if err != nil {
		logger.Warn("Contributors for family %s: %v", f.ID, err)
		return
	}
	if note := b.contributionNote(names, "FAM_"+f.RelationshipID); note != nil {
		f.Notes = append(f.Notes, note)
	}
}

// contributionNote builds the deduplicated contributor note for an owner
// scope, or nil when there are no contributors.
func (b *Builder) contributionNote(names []string, scope string) *domain.Note {
	if len(names) == 0 {
		return nil
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	text := "=== Contributors ===\n" + strings.Join(sorted, "\n")
	return b.reg.ContributionNote(text, scope)
}

func noteText(n gedcomx.Note) string {
	var sb strings.Builder
	if n.Subject != "" {
		sb.WriteString("=== " + n.Subject + " ===\n")
	}
	if n.Text != "" {
		sb.WriteString(n.Text + "\n")
	}
	return sb.String()
}

func setToSlice(s driving.Set) []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
