package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
)

// Set is a frontier of individual ids.
type Set = map[string]struct{}

// GraphBuilder expands the entity graph from a frontier of known
// individuals. All operations are idempotent per id: no person or family is
// ever fetched or created twice within a run.
type GraphBuilder interface {
	// AddIndividuals fetches and builds persons for every id not already
	// known, skipping excluded ids.
	AddIndividuals(ctx context.Context, ids []string) error

	// AddParents fetches the parents referenced by the frontier, materializes
	// child families, and returns the newly discovered parent ids.
	AddParents(ctx context.Context, frontier Set) (Set, error)

	// AddChildren is the symmetric operation over child edges.
	AddChildren(ctx context.Context, frontier Set) (Set, error)

	// AddSpouses fetches missing spouses among the frontier's couple edges,
	// materializes spouse families and retrieves marriage details once per
	// family.
	AddSpouses(ctx context.Context, frontier Set) error

	// AddOrdinances fetches temple ordinances for one individual; denial is
	// non-fatal and reported as a warning by the implementation.
	AddOrdinances(ctx context.Context, id string) error

	// Ascend expands ancestors for the given number of generations.
	Ascend(ctx context.Context, generations int) error

	// Descend expands descendants for the given number of generations.
	Descend(ctx context.Context, generations int) error

	// Radius expands both directions up to the given graph distance,
	// optionally including spouse expansion each round. Mutually exclusive
	// with Ascend/Descend per run.
	Radius(ctx context.Context, distance int, marriage bool) error

	// Known returns the ids of all individuals built so far.
	Known() Set

	// Snapshot freezes the graph for serialization.
	Snapshot() *domain.Graph
}

// Exporter writes a finished graph to an output stream.
type Exporter interface {
	Export(w io.Writer, g *domain.Graph) error
}
