// ------------------------------------------------------
// simjoin - Candidate Enumeration & Verification
// ------------------------------------------------------

// Package candidate implements the per-right-row probe of the prefix
// inverted index, the length filter, and the bounded edit-distance
// verification step.
package candidate

import (
	"github.com/qgramjoin/simjoin/pkg/index"
	"github.com/qgramjoin/simjoin/pkg/levenshtein"
)

// CompOp is the comparison operator applied to the verified edit
// distance.
type CompOp int

const (
	OpLessEqual CompOp = iota
	OpLess
	OpEqual
)

// Match is one verified output pair: the left row id and the edit
// distance. Only candidates whose distance satisfies op become a Match.
type Match struct {
	LeftRowID int32
	Distance  int
}

// Set is a reusable candidate id set, owned exclusively by one
// enumeration task so it can be cleared and reused across right rows
// without reallocating.
type Set struct {
	members map[int32]struct{}
}

// NewSet returns an empty, ready-to-use candidate set.
func NewSet() *Set {
	return &Set{members: make(map[int32]struct{})}
}

// Reset clears the set for reuse on the next right row.
func (s *Set) Reset() {
	for k := range s.members {
		delete(s.members, k)
	}
}

// Enumerate probes idx with rightVec's prefix tokens, unions the
// posting lists into the candidate set scratch (cleared on entry), then
// applies the length filter and bounded edit-distance verification
// against leftStrings, emitting every candidate that satisfies op.
// matches is an output buffer owned by the caller; it is appended to,
// never cleared, so callers can accumulate across calls.
//
// qval and tau must match the values used to build idx; m is
// len(rightVec).
func Enumerate(
	scratch *Set,
	idx *index.Index,
	rightVec []int32,
	rightString string,
	leftStrings []string,
	qval, tau int,
	op CompOp,
	matches []Match,
) []Match {
	scratch.Reset()

	m := len(rightVec)
	p := index.PrefixLen(qval, tau, m)

	for j := 0; j < p; j++ {
		for _, rowID := range idx.Postings(rightVec[j]) {
			scratch.members[rowID] = struct{}{}
		}
	}

	for cand := range scratch.members {
		mLeft := int(idx.Size(cand))
		if !lengthFilterPasses(mLeft, m, tau) {
			continue
		}

		d := levenshtein.BoundedDistance(leftStrings[cand], rightString, tau)
		if satisfiesOp(d, tau, op) {
			matches = append(matches, Match{LeftRowID: cand, Distance: d})
		}
	}

	return matches
}

// lengthFilterPasses accepts only if m - tau <= mLeft <= m + tau. This
// is expressed in
// token-count units, not character units — see DESIGN.md for why that
// form (rather than the tighter character-length bound) is kept.
func lengthFilterPasses(mLeft, m, tau int) bool {
	diff := mLeft - m
	if diff < 0 {
		diff = -diff
	}
	return diff <= tau
}

// satisfiesOp applies the engine's comparison operator to a verified
// distance.
func satisfiesOp(d, tau int, op CompOp) bool {
	switch op {
	case OpLess:
		return d < tau
	case OpEqual:
		return d == tau
	default: // OpLessEqual
		return d <= tau
	}
}
