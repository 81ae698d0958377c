// Package tree materializes chains and subtrees of records linked by a
// single self-referential parent pointer.
package tree

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when a parent chain or subtree loops back on itself.
var ErrCycle = errors.New("tree: cycle detected")

// ParentFunc returns the parent of n and whether it has one.
type ParentFunc[N any] func(n N) (N, bool, error)

// ChildrenFunc returns the direct children of n in display order.
type ChildrenFunc[N any] func(n N) ([]N, error)

// Ancestors returns start followed by each of its ancestors up to the root.
func Ancestors[N any, K comparable](start N, id func(N) K, parent ParentFunc[N]) ([]N, error) {
	chain := []N{start}
	seen := map[K]struct{}{id(start): {}}

	for cur := start; ; {
		p, ok, err := parent(cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			return chain, nil
		}
		if _, dup := seen[id(p)]; dup {
			return nil, fmt.Errorf("%w: %v is its own ancestor", ErrCycle, id(p))
		}
		seen[id(p)] = struct{}{}
		chain = append(chain, p)
		cur = p
	}
}

// Descendants returns start and every transitive child, depth first, each
// node exactly once.
func Descendants[N any, K comparable](start N, id func(N) K, children ChildrenFunc[N]) ([]N, error) {
	var (
		out     []N
		visited = make(map[K]struct{})
		onPath  = make(map[K]struct{})
	)

	var walk func(n N) error
	walk = func(n N) error {
		key := id(n)
		if _, ok := onPath[key]; ok {
			return fmt.Errorf("%w: %v is its own descendant", ErrCycle, key)
		}
		if _, ok := visited[key]; ok {
			return nil
		}
		visited[key] = struct{}{}
		onPath[key] = struct{}{}
		defer delete(onPath, key)

		out = append(out, n)
		kids, err := children(n)
		if err != nil {
			return err
		}
		for _, child := range kids {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(start); err != nil {
		return nil, err
	}
	return out, nil
}
