// ------------------------------------------------------
// simjoin - Result Assembly & Output
// ------------------------------------------------------

// Package result assembles verified join pairs into the output
// column contract and renders that table in the formats a runnable
// service needs: an aligned human-readable table, JSON, or CSV.
package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/qgramjoin/simjoin/pkg/config"
	"github.com/qgramjoin/simjoin/pkg/join"
	"github.com/qgramjoin/simjoin/pkg/table"
)

// Table is the fully assembled output: a header row plus one row per
// emitted pair, columns already in `_id, l_<key>, r_<key>,
// l_<out_attrs...>, r_<out_attrs...>, [_sim_score]` order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Assemble builds the output Table from a join's verified pairs plus
// (when allow_missing was set) its unscored missing-value cross
// product, projecting keys and out-attrs from the original tables by
// row index and applying l_out_prefix/r_out_prefix.
func Assemble(res *join.Result, left, right *table.Table, opts *config.JoinConfig) *Table {
	header := []string{"_id"}
	header = append(header, opts.LOutPrefix+opts.LKeyAttr, opts.ROutPrefix+opts.RKeyAttr)
	for _, a := range opts.LOutAttrs {
		header = append(header, opts.LOutPrefix+a)
	}
	for _, a := range opts.ROutAttrs {
		header = append(header, opts.ROutPrefix+a)
	}
	if opts.OutSimScore {
		header = append(header, "_sim_score")
	}

	rows := make([][]string, 0, len(res.Pairs)+len(res.Missing))
	id := 0

	appendRow := func(l, r table.Row, simScore string) {
		row := []string{strconv.Itoa(id)}
		row = append(row, fmt.Sprint(l.Key), fmt.Sprint(r.Key))
		row = append(row, projectOutAttrs(l, len(opts.LOutAttrs))...)
		row = append(row, projectOutAttrs(r, len(opts.ROutAttrs))...)
		if opts.OutSimScore {
			row = append(row, simScore)
		}
		rows = append(rows, row)
		id++
	}

	for _, p := range res.Pairs {
		appendRow(left.Rows[p.LeftRow], right.Rows[p.RightRow], strconv.Itoa(p.Distance))
	}
	for _, mp := range res.Missing {
		appendRow(mp.Left, mp.Right, "")
	}

	return &Table{Header: header, Rows: rows}
}

// projectOutAttrs defensively pads/truncates a row's OutAttrs to n
// columns; LoadCSV always produces exactly len(outCols) attrs, but a
// caller constructing table.Row by hand (as tests do) may not.
func projectOutAttrs(r table.Row, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(r.OutAttrs); i++ {
		out[i] = r.OutAttrs[i]
	}
	return out
}

// Writer renders an assembled Table in the configured output format
// and destination. It is safe for a single sequential Write call; it
// does not support incremental/streaming output, because a join
// produces its complete result set before any row is ready to render.
type Writer struct {
	mu         sync.Mutex
	format     config.OutputFormat
	outputFile *os.File
}

// NewWriter opens opts.OutputFile if configured, or defaults to
// stdout. Returns an error if the file cannot be created.
func NewWriter(opts *config.JoinConfig) (*Writer, error) {
	w := &Writer{format: opts.Output}
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("create output file %q: %w", opts.OutputFile, err)
		}
		w.outputFile = f
	}
	return w, nil
}

// Write renders t in the writer's configured format.
func (w *Writer) Write(t *Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.format {
	case config.OutputJSON:
		return w.writeJSON(t)
	case config.OutputCSV:
		return w.writeCSV(t)
	default:
		return w.writeHuman(t)
	}
}

// writeHuman writes an aligned, whitespace-padded table.
func (w *Writer) writeHuman(t *Table) error {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	out := w.writer()
	writeRow := func(cells []string) {
		var sb strings.Builder
		for i, cell := range cells {
			sb.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		fmt.Fprintln(out, strings.TrimRight(sb.String(), " "))
	}

	writeRow(t.Header)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return nil
}

// writeJSON marshals the table as an array of objects keyed by header.
func (w *Writer) writeJSON(t *Table) error {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			rec[h] = row[i]
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal join result to JSON: %w", err)
	}
	_, err = fmt.Fprintf(w.writer(), "%s\n", data)
	return err
}

// writeCSV writes the header followed by one row per pair.
func (w *Writer) writeCSV(t *Table) error {
	cw := csv.NewWriter(w.writer())
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writer() *os.File {
	if w.outputFile != nil {
		return w.outputFile
	}
	return os.Stdout
}

// Close flushes and closes the writer's output file, if any.
func (w *Writer) Close() {
	if w.outputFile == nil {
		return
	}
	if err := w.outputFile.Close(); err != nil {
		log.Errorf("close output file: %v", err)
	}
}
