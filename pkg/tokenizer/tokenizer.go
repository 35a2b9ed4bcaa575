// ------------------------------------------------------
// simjoin - Q-gram Tokenizer Collaborator
// ------------------------------------------------------

// Package tokenizer defines the collaborator interface the join engine
// borrows its q-grams from, plus the one concrete implementation the
// engine accepts. The tokenizer's own splitting algorithm is not part
// of the join engine's correctness surface — it's a borrowed
// dependency, the way an HTTP client is a borrowed dependency of a
// scanner.
package tokenizer

// Tokenizer is the capability set the join engine requires: a q-gram
// size, a splitting function, and a toggleable "return set" flag. No
// other tokenizer shape is valid for this engine — it forces
// SetReturnSet(false) for the duration of a join (duplicates retained)
// and restores whatever value it found on every exit path.
type Tokenizer interface {
	QVal() int
	Tokenize(s string) []string
	ReturnSet() bool
	SetReturnSet(bool)
}

// QGramTokenizer splits a byte string into overlapping length-q
// substrings, in order of occurrence, with duplicates retained unless
// ReturnSet is true.
type QGramTokenizer struct {
	qval      int
	returnSet bool
}

// NewQGramTokenizer creates a tokenizer with the given q-gram size.
// qval must be positive; a non-positive value is coerced to 1 rather
// than panicking, since validation of caller input belongs to
// config.Validate, not to this collaborator.
func NewQGramTokenizer(qval int) *QGramTokenizer {
	if qval < 1 {
		qval = 1
	}
	return &QGramTokenizer{qval: qval}
}

func (t *QGramTokenizer) QVal() int { return t.qval }

// Tokenize returns the q-grams of s in order of occurrence. A string
// shorter than q produces zero q-grams — this is what makes the join
// engine's prefix filter approximate rather than exact.
func (t *QGramTokenizer) Tokenize(s string) []string {
	n := len(s)
	if n < t.qval {
		return nil
	}

	grams := make([]string, 0, n-t.qval+1)
	for i := 0; i+t.qval <= n; i++ {
		grams = append(grams, s[i:i+t.qval])
	}

	if !t.returnSet {
		return grams
	}

	seen := make(map[string]struct{}, len(grams))
	deduped := grams[:0]
	for _, g := range grams {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		deduped = append(deduped, g)
	}
	return deduped
}

func (t *QGramTokenizer) ReturnSet() bool { return t.returnSet }

func (t *QGramTokenizer) SetReturnSet(v bool) { t.returnSet = v }
