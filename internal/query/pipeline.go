package query

import (
	"sort"

	"github.com/sethunthunder111/json-database-st/pkg/document"
)

// Options control the stages that run after filtering.
type Options struct {
	// Sort maps dotted field paths to 1 (ascending) or -1 (descending),
	// applied in the object's own key order. Nil means no sorting.
	Sort *document.Value

	// Skip drops that many items from the head of the result.
	Skip int

	// Limit caps the remainder; values <= 0 mean unbounded.
	Limit int

	// Select lists dotted paths to project. Empty means items as-is.
	Select []string
}

// Run executes the pipeline over items: filter, sort, skip, limit,
// project, in that order.
func Run(items []*document.Value, q *document.Value, opts Options) []*document.Value {
	results := make([]*document.Value, 0, len(items))
	for _, item := range items {
		if Match(item, q) {
			results = append(results, item)
		}
	}

	if opts.Sort != nil && opts.Sort.Kind() == document.KindObject {
		sortItems(results, opts.Sort)
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(results) {
			results = nil
		} else {
			results = results[opts.Skip:]
		}
	}

	if opts.Limit > 0 && opts.Limit < len(results) {
		results = results[:opts.Limit]
	}

	if len(opts.Select) > 0 {
		projected := make([]*document.Value, len(results))
		for i, item := range results {
			projected[i] = Project(item, opts.Select)
		}
		results = projected
	}

	return results
}

// sortItems stable-sorts by each sort key in turn. Items missing a sort
// field order after present ones on ascending keys; the whole
// comparison flips on descending. Incomparable pairs count as equal.
func sortItems(items []*document.Value, sortSpec *document.Value) {
	keys := sortSpec.Keys()
	descending := make([]bool, len(keys))
	for i, k := range keys {
		dir, _ := sortSpec.Field(k)
		if f, ok := dir.AsFloat64(); ok && f < 0 {
			descending[i] = true
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		for i, k := range keys {
			c := compareByField(items[a], items[b], k)
			if descending[i] {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareByField(a, b *document.Value, path string) int {
	va, okA := document.Get(a, path)
	vb, okB := document.Get(b, path)
	switch {
	case okA && okB:
		c, ok := document.Compare(va, vb)
		if !ok {
			return 0
		}
		return c
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// Project rebuilds item as a fresh object holding only the listed
// paths, reconstructing nested structure where a path demands it.
// Missing source paths contribute nothing.
func Project(item *document.Value, paths []string) *document.Value {
	out := document.Object()
	for _, p := range paths {
		if v, ok := document.Get(item, p); ok {
			document.Set(out, p, v)
		}
	}
	return out
}
