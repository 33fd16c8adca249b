package util

import (
	"cmp"
	"slices"
)

// Okeys returns the keys of a map in sorted order, used to render
// deterministic JSON output for maps whose iteration order is otherwise
// unspecified.
func Okeys[T cmp.Ordered, K any](m map[T]K) []T {
	keys := make([]T, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
