// ------------------------------------------------------
// simjoin - Join Orchestrator
// ------------------------------------------------------

// Package join ties the core algorithmic packages together into a
// single entry point: validate, build the shared immutable state
// once, run the parallel driver, and materialize output pairs,
// optionally widened with the missing-value cross product.
package join

import (
	"context"
	"math"

	"github.com/qgramjoin/simjoin/pkg/config"
	"github.com/qgramjoin/simjoin/pkg/driver"
	"github.com/qgramjoin/simjoin/pkg/index"
	"github.com/qgramjoin/simjoin/pkg/ordering"
	"github.com/qgramjoin/simjoin/pkg/table"
	"github.com/qgramjoin/simjoin/pkg/tokenizer"
)

// Pair is one verified output pair, referencing the original row index
// (not the filtered valid-row index) on each side so the orchestrator
// can project key/out-attrs straight from the source tables.
type Pair struct {
	LeftRow  int
	RightRow int
	Distance int
}

// Result is everything the result-assembly collaborator needs: the
// scored core pairs and the unscored missing-value pairs, kept
// separate since only the former carries a distance.
type Result struct {
	Pairs   []Pair
	Missing []table.MissingPair
}

// Join validates opts, drops missing-join rows from both tables
// (retaining a mapping back to their original row index), floors the
// threshold to an integer τ, builds the token ordering, vectors, and
// prefix index once, runs the parallel driver, and materializes output
// pairs against original row indices. The tokenizer's ReturnSet is
// forced to false for the duration of the call and restored on every
// exit path.
func Join(ctx context.Context, left, right *table.Table, tk tokenizer.Tokenizer, opts *config.JoinConfig) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	prevReturnSet := tk.ReturnSet()
	tk.SetReturnSet(false)
	defer tk.SetReturnSet(prevReturnSet)

	tau := int(math.Floor(opts.Threshold))

	leftValid, leftOrig := left.ValidRows()
	rightValid, rightOrig := right.ValidRows()

	leftStrings := make([]string, len(leftValid))
	rightStrings := make([]string, len(rightValid))
	for i, r := range leftValid {
		leftStrings[i] = r.Join
	}
	for i, r := range rightValid {
		rightStrings[i] = r.Join
	}

	leftGrams := make([][]string, len(leftStrings))
	for i, s := range leftStrings {
		leftGrams[i] = tk.Tokenize(s)
	}
	rightGrams := make([][]string, len(rightStrings))
	for i, s := range rightStrings {
		rightGrams[i] = tk.Tokenize(s)
	}

	ord := ordering.Build(leftGrams, rightGrams)

	leftVectors := make([][]int32, len(leftGrams))
	for i, g := range leftGrams {
		leftVectors[i] = ord.Vector(g)
	}
	idx := index.Build(leftVectors, tk.QVal(), tau)

	rightView := &driver.Right{
		Offsets: make([]int, len(rightGrams)+1),
		Strings: rightStrings,
	}
	for i, g := range rightGrams {
		vec := ord.Vector(g)
		rightView.Offsets[i] = len(rightView.Vectors)
		rightView.Vectors = append(rightView.Vectors, vec...)
	}
	rightView.Offsets[len(rightGrams)] = len(rightView.Vectors)

	params := driver.Params{
		LeftStrings: leftStrings,
		QVal:        tk.QVal(),
		Tau:         tau,
		Op:          opts.CompOp.ToCandidateOp(),
	}

	outputs, err := driver.Run(ctx, idx, rightView, params, opts.NJobs)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, len(outputs))
	for i, o := range outputs {
		pairs[i] = Pair{
			LeftRow:  leftOrig[o.Match.LeftRowID],
			RightRow: rightOrig[o.RightRowID],
			Distance: o.Match.Distance,
		}
	}

	result := &Result{Pairs: pairs}
	if opts.AllowMissing {
		result.Missing = table.CrossMissing(left, right)
	}
	return result, nil
}
