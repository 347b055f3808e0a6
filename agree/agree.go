// Package agree implements the agreement (quorum) algorithm: given a list of
// per-service candidate identifier lists and a quorum k, it returns the
// intersection of some size-k subset of those lists, or empty. This is a
// pure function with no I/O, no logging and no configuration, kept as its
// own package so it is trivially unit-testable in isolation, separate from
// the I/O-performing service adapters.
package agree

import (
	"sort"

	"github.com/wardle/pura-go/compound"
)

// Agree returns the reconciled candidate output list for lists under a
// quorum of k:
//  1. Discard empty lists; all retained lists are assumed to share one
//     output kind (guaranteed by the Service contract upstream).
//  2. Convert each retained list to a set of its Value strings.
//  3. Enumerate all size-k subsets of the retained sets in lexicographic
//     index order.
//  4. Return the first subset's non-empty intersection, re-wrapped as
//     identifiers of the witnessed kind.
//  5. If every subset's intersection is empty (or fewer than k lists are
//     non-empty), return nil.
func Agree(lists [][]compound.Identifier, k int) []compound.Identifier {
	if k < 1 {
		return nil
	}

	var retained [][]compound.Identifier
	for _, l := range lists {
		if len(l) > 0 {
			retained = append(retained, l)
		}
	}
	if len(retained) < k {
		return nil
	}

	if k == 1 {
		// No intersection to compute: a quorum of one is satisfied by the
		// first non-empty list alone, returned in its own enumeration order
		// rather than routed through the sorted-intersection path below.
		out := make([]compound.Identifier, len(retained[0]))
		copy(out, retained[0])
		return out
	}

	kind := retained[0][0].Kind

	sets := make([]map[string]struct{}, len(retained))
	for i, l := range retained {
		s := make(map[string]struct{}, len(l))
		for _, id := range l {
			s[id.Value] = struct{}{}
		}
		sets[i] = s
	}

	var result []string
	forEachCombination(len(sets), k, func(combo []int) bool {
		inter := intersect(sets, combo)
		if len(inter) > 0 {
			result = inter
			return false // stop: first non-empty intersection wins.
		}
		return true
	})
	if len(result) == 0 {
		return nil
	}

	out := make([]compound.Identifier, 0, len(result))
	for _, v := range result {
		out = append(out, compound.New(kind, v))
	}
	return out
}

// intersect computes the intersection of the sets named by combo (indices
// into sets), returned sorted in ascending string order so Agree's output is
// deterministic for equal inputs regardless of map iteration order.
func intersect(sets []map[string]struct{}, combo []int) []string {
	first := sets[combo[0]]
	var out []string
	for v := range first {
		inAll := true
		for _, idx := range combo[1:] {
			if _, ok := sets[idx][v]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, v)
		}
	}
	// Go map iteration order is randomized per run; sort so Agree's output
	// is deterministic for equal inputs.
	sort.Strings(out)
	return out
}

// forEachCombination enumerates every size-k subset of {0, ..., n-1} in
// lexicographic order of their indices, calling visit(combo) for each; visit
// returns false to stop early.
func forEachCombination(n, k int, visit func(combo []int) bool) {
	if k > n {
		return
	}
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		if !visit(combo) {
			return
		}
		// advance to the next combination, or stop if none remains.
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}
