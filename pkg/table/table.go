// ------------------------------------------------------
// simjoin - Tabular I/O Collaborator
// ------------------------------------------------------

// Package table implements the tabular I/O, column resolution, and
// missing-value collaborators that sit outside the join engine's core:
// loading a CSV into rows, resolving named columns to indices, and
// producing the missing-value cross-product used when allow_missing is
// set.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/qgramjoin/simjoin/pkg/joinerr"
)

// Row is one input row: an opaque key, the join attribute (empty and
// JoinValid=false when missing), and the projected output attributes.
type Row struct {
	Key       any
	Join      string
	JoinValid bool
	OutAttrs  []string
}

// Table is a column-named collection of rows, as loaded from CSV.
type Table struct {
	Columns []string
	Rows    []Row
}

// columnIndex resolves a column name to its position, or -1 if absent.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LoadCSV reads a CSV file (first row = header) and builds a Table
// whose rows carry keyCol as Key, joinCol as Join (JoinValid=false when
// the cell is empty), and outCols projected into OutAttrs in order.
func LoadCSV(path, keyCol, joinCol string, outCols []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, joinerr.New(joinerr.InvalidInputTable, "open %q: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, joinerr.New(joinerr.InvalidInputTable, "read header from %q: %v", path, err)
	}

	t := &Table{Columns: header}

	keyIdx := t.columnIndex(keyCol)
	if keyIdx < 0 {
		return nil, joinerr.New(joinerr.UnknownAttribute, "key column %q not found in %q", keyCol, path)
	}
	joinIdx := t.columnIndex(joinCol)
	if joinIdx < 0 {
		return nil, joinerr.New(joinerr.UnknownAttribute, "join column %q not found in %q", joinCol, path)
	}
	outIdx := make([]int, len(outCols))
	for i, c := range outCols {
		idx := t.columnIndex(c)
		if idx < 0 {
			return nil, joinerr.New(joinerr.InvalidOutputAttribute, "out attribute %q not found in %q", c, path)
		}
		outIdx[i] = idx
	}

	seenKeys := make(map[string]struct{})
	allNumeric := true
	sawJoinValue := false

	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if keyIdx >= len(record) || joinIdx >= len(record) {
			return nil, joinerr.New(joinerr.InvalidInputTable, "row in %q has too few columns: %v", path, record)
		}

		key := record[keyIdx]
		if key == "" {
			return nil, joinerr.New(joinerr.NonUniqueOrMissingKey, "missing key in %q", path)
		}
		if _, dup := seenKeys[key]; dup {
			return nil, joinerr.New(joinerr.NonUniqueOrMissingKey, "duplicate key %q in %q", key, path)
		}
		seenKeys[key] = struct{}{}

		row := Row{Key: key}
		if joinVal := record[joinIdx]; joinVal != "" {
			row.Join = joinVal
			row.JoinValid = true
			sawJoinValue = true
			if _, numErr := strconv.ParseFloat(joinVal, 64); numErr != nil {
				allNumeric = false
			}
		}

		row.OutAttrs = make([]string, len(outIdx))
		for i, idx := range outIdx {
			if idx < len(record) {
				row.OutAttrs[i] = record[idx]
			}
		}

		t.Rows = append(t.Rows, row)
	}

	// A join column whose every non-empty cell parses as a number is
	// numeric-typed, not textual — the q-gram tokenizer has no defined
	// behavior on numbers, so reject it the way a dtype check on a
	// numeric column would.
	if sawJoinValue && allNumeric {
		return nil, joinerr.New(joinerr.NonTextualJoinAttribute, "join column %q in %q is numeric, not textual", joinCol, path)
	}

	return t, nil
}

// MissingPair is one cross-product pair produced when allow_missing is
// set: at least one side's join attribute was absent, so the pair was
// never a candidate for the edit-distance core.
type MissingPair struct {
	Left  Row
	Right Row
}

// CrossMissing returns the cross product of every left row with a
// missing join attribute against every right row (any join value), and
// every right row with a missing join attribute against every left row
// (any join value), deduplicated so a pair missing on both sides is
// emitted once.
func CrossMissing(left, right *Table) []MissingPair {
	var pairs []MissingPair

	for _, l := range left.Rows {
		if l.JoinValid {
			continue
		}
		for _, r := range right.Rows {
			pairs = append(pairs, MissingPair{Left: l, Right: r})
		}
	}
	for _, r := range right.Rows {
		if r.JoinValid {
			continue
		}
		for _, l := range left.Rows {
			if !l.JoinValid {
				continue // already emitted above
			}
			pairs = append(pairs, MissingPair{Left: l, Right: r})
		}
	}

	return pairs
}

// ValidRows returns the subset of t.Rows with a non-missing join
// attribute, alongside the mapping back to their original index in
// t.Rows.
func (t *Table) ValidRows() (rows []Row, originalIndex []int) {
	rows = make([]Row, 0, len(t.Rows))
	originalIndex = make([]int, 0, len(t.Rows))
	for i, r := range t.Rows {
		if r.JoinValid {
			rows = append(rows, r)
			originalIndex = append(originalIndex, i)
		}
	}
	return rows, originalIndex
}

// String satisfies fmt.Stringer for debugging output.
func (r Row) String() string {
	return fmt.Sprintf("Row{Key: %v, Join: %q, OutAttrs: %v}", r.Key, r.Join, r.OutAttrs)
}
