package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// GetSortedKeys is GetKeys in ascending order, for deterministic iteration.
func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Abs[A constraints.Signed](num A) A {
	if num < 0 {
		return -num
	}
	return num
}

// Mod is the Euclidean remainder: the result is always in [0, m) for m > 0.
func Mod[A constraints.Signed](n A, m A) A {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

// FloorDiv rounds towards negative infinity, so that
// FloorDiv(n, m)*m + Mod(n, m) == n for every n.
func FloorDiv[A constraints.Signed](n A, m A) A {
	return (n - Mod(n, m)) / m
}

func Clamp[A constraints.Integer](num A, lo A, hi A) A {
	if num < lo {
		return lo
	}
	if num > hi {
		return hi
	}
	return num
}
