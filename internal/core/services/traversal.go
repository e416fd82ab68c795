package services

import (
	"context"

	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lineage-cli/internal/logger"
)

// Ascend expands ancestors generation by generation, starting from every
// individual known so far. Each round's frontier is the parents discovered
// in the previous round minus everything already visited, so the walk
// terminates on cycles and converging lines.
func (b *Builder) Ascend(ctx context.Context, generations int) error {
	todo := b.Known()
	done := make(driving.Set)
	for gen := 0; gen < generations && len(todo) > 0; gen++ {
		union(done, todo)
		logger.Info("Downloading generation %d of ancestors...", gen+1)
		parents, err := b.AddParents(ctx, todo)
		if err != nil {
			return err
		}
		todo = diff(parents, done)
	}
	return nil
}

// Descend expands descendants generation by generation, mirroring Ascend
// over child edges.
func (b *Builder) Descend(ctx context.Context, generations int) error {
	todo := b.Known()
	done := make(driving.Set)
	for gen := 0; gen < generations && len(todo) > 0; gen++ {
		union(done, todo)
		logger.Info("Downloading generation %d of descendants...", gen+1)
		children, err := b.AddChildren(ctx, todo)
		if err != nil {
			return err
		}
		todo = diff(children, done)
	}
	return nil
}

// Radius expands the graph in both directions up to the given distance.
// Every round adds both the parents and the children of the frontier, and
// with marriage set also the spouses of everyone known, so the result is the
// full relatives ball rather than a lineal chain.
func (b *Builder) Radius(ctx context.Context, distance int, marriage bool) error {
	todo := b.Known()
	done := make(driving.Set)
	for d := 0; d < distance && len(todo) > 0; d++ {
		union(done, todo)
		logger.Info("Downloading relatives at distance %d...", d+1)
		parents, err := b.AddParents(ctx, todo)
		if err != nil {
			return err
		}
		children, err := b.AddChildren(ctx, todo)
		if err != nil {
			return err
		}
		if marriage {
			if err := b.AddSpouses(ctx, b.Known()); err != nil {
				return err
			}
		}
		next := make(driving.Set)
		union(next, parents)
		union(next, children)
		todo = diff(next, done)
	}
	return nil
}

func union(dst, src driving.Set) {
	for id := range src {
		dst[id] = struct{}{}
	}
}

func diff(a, b driving.Set) driving.Set {
	out := make(driving.Set)
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}
