// ------------------------------------------------------
// simjoin - Global Token Ordering
// Ascending document-frequency ranking of q-grams
// ------------------------------------------------------

// Package ordering assigns dense integer ids to q-grams by ascending
// combined document frequency across both join inputs, so that a
// vector's prefix concentrates its rarest tokens.
package ordering

import "sort"

// Ordering maps q-gram byte strings to dense ids in [0, V). Ids are
// assigned once per join and never change afterwards.
type Ordering struct {
	idOf map[string]int32
}

// Build computes the ordering over the q-gram multisets of every left
// and right row. Ties in combined frequency are broken lexicographically
// on the q-gram bytes, so the ordering is deterministic given the same
// inputs.
func Build(leftGrams, rightGrams [][]string) *Ordering {
	freq := make(map[string]int)
	for _, row := range leftGrams {
		for _, g := range row {
			freq[g]++
		}
	}
	for _, row := range rightGrams {
		for _, g := range row {
			freq[g]++
		}
	}

	grams := make([]string, 0, len(freq))
	for g := range freq {
		grams = append(grams, g)
	}

	sort.Slice(grams, func(i, j int) bool {
		fi, fj := freq[grams[i]], freq[grams[j]]
		if fi != fj {
			return fi < fj
		}
		return grams[i] < grams[j]
	})

	idOf := make(map[string]int32, len(grams))
	for id, g := range grams {
		idOf[g] = int32(id)
	}

	return &Ordering{idOf: idOf}
}

// Size returns the total distinct q-gram count V across both inputs.
func (o *Ordering) Size() int { return len(o.idOf) }

// Vector maps one row's q-gram multiset through the ordering and sorts
// it ascending by id, retaining duplicates. A q-gram with no assigned
// id (not present in either input used to Build the ordering) is
// dropped — it cannot happen for rows that were part of the Build
// call, but callers probing with foreign strings get a
// defensively-filtered result rather than a panic.
func (o *Ordering) Vector(grams []string) []int32 {
	vec := make([]int32, 0, len(grams))
	for _, g := range grams {
		if id, ok := o.idOf[g]; ok {
			vec = append(vec, id)
		}
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i] < vec[j] })
	return vec
}
