// ------------------------------------------------------
// simjoin - Parallel Partition Driver
// ------------------------------------------------------

// Package driver partitions the right-hand side into contiguous
// ranges and runs one independent candidate-enumeration task per
// range, concatenating results deterministically by partition index.
package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/qgramjoin/simjoin/pkg/candidate"
	"github.com/qgramjoin/simjoin/pkg/index"
)

// Right is the read-only, shared view of the right-hand side every
// task probes. It is built once by the orchestrator and never mutated
// after the driver starts.
type Right struct {
	Vectors []int32 // every row's ordered token ids, concatenated in row order
	Offsets []int   // Offsets[i], Offsets[i+1] bound row i's token ids within Vectors
	Strings []string
}

// Vector returns the ordered token vector for right row i.
func (r *Right) Vector(i int) []int32 {
	return r.Vectors[r.Offsets[i]:r.Offsets[i+1]]
}

// Len returns the number of right rows, R.
func (r *Right) Len() int { return len(r.Strings) }

// Params bundles the join parameters every task needs, all immutable
// for the driver's lifetime.
type Params struct {
	LeftStrings []string
	QVal        int
	Tau         int
	Op          candidate.CompOp
}

// partition is a contiguous, half-open right-row index range [Lo, Hi).
type partition struct {
	Lo, Hi int
}

// partitionRanges splits [0, r) into n contiguous, near-equal chunks.
// n is clamped to [1, r] by the caller (Run).
func partitionRanges(r, n int) []partition {
	if r == 0 {
		return nil
	}
	base := r / n
	rem := r % n
	parts := make([]partition, 0, n)
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		parts = append(parts, partition{Lo: lo, Hi: lo + size})
		lo += size
	}
	return parts
}

// Output is one emitted match tagged with its right row id. Each task
// collects its own right-row-ordered slice of them.
type Output struct {
	RightRowID int32
	Match      candidate.Match
}

// Run resolves nJobs to a worker count clamped to [1, R], partitions
// the right side into that many contiguous ranges, and runs one
// errgroup task per partition. Each task owns its candidate scratch
// set and output buffer and never touches another task's state; the
// shared idx/right/params are read-only for the whole call. Results
// are concatenated in partition order, so within the overall output,
// ascending right-row order holds, but candidate iteration order
// within a right row is unordered.
//
// Run polls ctx between right rows; an in-flight BoundedDistance call
// is not interruptible. If any
// task returns an error, Run cancels the remaining tasks and returns
// the first error with no partial output.
func Run(ctx context.Context, idx *index.Index, right *Right, params Params, nJobs int) ([]Output, error) {
	r := right.Len()
	workers := ResolveWorkers(nJobs, r)

	parts := partitionRanges(r, workers)
	buffers := make([][]Output, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for pi, part := range parts {
		pi, part := pi, part
		g.Go(func() error {
			buf := make([]Output, 0, part.Hi-part.Lo)
			scratch := candidate.NewSet()
			var matches []candidate.Match

			for rid := part.Lo; rid < part.Hi; rid++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				matches = matches[:0]
				matches = candidate.Enumerate(
					scratch, idx, right.Vector(rid), right.Strings[rid],
					params.LeftStrings, params.QVal, params.Tau, params.Op, matches,
				)
				for _, m := range matches {
					buf = append(buf, Output{RightRowID: int32(rid), Match: m})
				}
			}

			buffers[pi] = buf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, buf := range buffers {
		total += len(buf)
	}
	out := make([]Output, 0, total)
	for _, buf := range buffers {
		out = append(out, buf...)
	}
	return out, nil
}

// ResolveWorkers implements n_jobs resolution: 1 is sequential, -1 is
// all CPUs, -k is CPUs+1-k, and anything resolving below 1 falls back
// to sequential. The result is always clamped to [1, r].
func ResolveWorkers(nJobs, r int) int {
	n := nJobs
	if n < 0 {
		n = NumCPU() + 1 + n
	}
	if n < 1 {
		n = 1
	}
	if r < 1 {
		return 1
	}
	if n > r {
		n = r
	}
	return n
}
