// ------------------------------------------------------
// simjoin - Q-gram Prefix Inverted Index
// ------------------------------------------------------

// Package index builds the left-side prefix inverted index: for each
// left row, its ordered q-gram prefix of length p(m) = min(q*tau+1, m)
// is posted into token -> []rowID lists. The index is
// built once, single-threaded, and is immutable and lock-free for
// every subsequent concurrent lookup.
package index

// Index is the immutable, read-only-after-build prefix inverted index.
type Index struct {
	postings map[int32][]int32
	sizes    []int32 // size_vector: sizes[rowID] = |ordered token vector of rowID|
}

// PrefixLen returns p(m) = min(q*tau+1, m), the prefix length used both
// to build the index and to probe it.
func PrefixLen(qval, tau, m int) int {
	p := qval*tau + 1
	if p > m {
		p = m
	}
	return p
}

// Build constructs the index over left's ordered token vectors. vectors[i]
// must already be sorted ascending by token id (ordering.Ordering.Vector
// guarantees this). qval and tau determine each row's prefix length.
//
// Posting lists are appended in increasing row id, so each list is
// naturally sorted by row id (relied on only for stable iteration, not
// for correctness — the candidate set downstream dedups). A (token,
// row) pair is posted at most once even if the row's prefix contains
// that token more than once.
func Build(vectors [][]int32, qval, tau int) *Index {
	idx := &Index{
		postings: make(map[int32][]int32),
		sizes:    make([]int32, len(vectors)),
	}

	for rowID, vec := range vectors {
		m := len(vec)
		idx.sizes[rowID] = int32(m)

		p := PrefixLen(qval, tau, m)
		var lastToken int32 = -1
		lastValid := false
		for j := 0; j < p; j++ {
			tok := vec[j]
			if lastValid && tok == lastToken {
				// Duplicate token within this row's own prefix:
				// posting it twice for the same row is redundant.
				continue
			}
			idx.postings[tok] = append(idx.postings[tok], int32(rowID))
			lastToken = tok
			lastValid = true
		}
	}

	return idx
}

// Postings returns the (possibly nil) posting list for a token id.
// Safe for concurrent read-only use once Build has returned.
func (idx *Index) Postings(token int32) []int32 {
	return idx.postings[token]
}

// Size returns the recorded token-vector length of a left row id.
func (idx *Index) Size(rowID int32) int32 {
	return idx.sizes[rowID]
}

// NumRows returns the number of left rows indexed.
func (idx *Index) NumRows() int {
	return len(idx.sizes)
}
