package housing

import (
	"fmt"
	"sort"

	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// Record is a single row keyed by column name.
type Record map[string]float64

// Frame is an immutable-by-convention columnar table of float64 values.
// Methods that change shape or values return a new Frame; only Set
// mutates, and callers use it on frames they own.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]float64
	rows  int
}

// NewFrame builds a frame from parallel name/column slices. Columns are copied.
func NewFrame(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("frame: %d names for %d columns", len(names), len(cols))
	}
	f := &Frame{index: make(map[string]int, len(names)), rows: -1}
	for i, n := range names {
		if f.rows >= 0 && len(cols[i]) != f.rows {
			return nil, fmt.Errorf("frame: column %s has %d rows, want %d", n, len(cols[i]), f.rows)
		}
		if f.Has(n) {
			return nil, fmt.Errorf("frame: duplicate column %s", n)
		}
		f.rows = len(cols[i])
		if err := f.Set(n, cols[i]); err != nil {
			return nil, err
		}
	}
	if f.rows < 0 {
		f.rows = 0
	}
	return f, nil
}

// FromRows builds a frame from row-major values.
func FromRows(names []string, rows [][]float64) (*Frame, error) {
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("frame: row %d has %d values, want %d", i, len(row), len(names))
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return NewFrame(names, cols)
}

// FromRecords builds a frame from keyed records. Every record must carry the
// same key set; known columns come first in catalogue order, the rest sorted.
func FromRecords(records []Record) (*Frame, error) {
	if len(records) == 0 {
		return NewFrame(nil, nil)
	}
	names := orderedKeys(records[0])
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(records))
	}
	for i, rec := range records {
		var missing []string
		for j, n := range names {
			v, ok := rec[n]
			if !ok {
				missing = append(missing, n)
				continue
			}
			cols[j][i] = v
		}
		if len(missing) > 0 {
			return nil, pkgerrors.MissingColumns(fmt.Sprintf("record %d", i), missing...)
		}
		if len(rec) != len(names) {
			var extra []string
			for k := range rec {
				if !containsName(names, k) {
					extra = append(extra, k)
				}
			}
			sort.Strings(extra)
			return nil, &pkgerrors.SchemaError{Op: fmt.Sprintf("record %d", i), Extra: extra}
		}
	}
	return NewFrame(names, cols)
}

func orderedKeys(rec Record) []string {
	known := append(append(RawColumns(), Target), engineeredColumns...)
	names := make([]string, 0, len(rec))
	for _, k := range known {
		if _, ok := rec[k]; ok {
			names = append(names, k)
		}
	}
	var rest []string
	for k := range rec {
		if !containsName(known, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func containsName(names []string, n string) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}

func (f *Frame) Len() int   { return f.rows }
func (f *Frame) Width() int { return len(f.names) }

func (f *Frame) Names() []string { return append([]string(nil), f.names...) }

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the backing slice for name. Callers must not modify it.
func (f *Frame) Column(name string) ([]float64, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Missing lists the names not present in f, preserving the given order.
func (f *Frame) Missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !f.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Set replaces the column in place or appends it as the last column.
func (f *Frame) Set(name string, values []float64) error {
	if f.index == nil {
		f.index = map[string]int{}
	}
	if len(f.names) > 0 && len(values) != f.rows {
		return fmt.Errorf("frame: column %s has %d rows, want %d", name, len(values), f.rows)
	}
	if len(f.names) == 0 {
		f.rows = len(values)
	}
	cp := append([]float64(nil), values...)
	if i, ok := f.index[name]; ok {
		f.cols[i] = cp
		return nil
	}
	f.index[name] = len(f.names)
	f.names = append(f.names, name)
	f.cols = append(f.cols, cp)
	return nil
}

func (f *Frame) Clone() *Frame {
	out, _ := NewFrame(f.names, f.cols)
	out.rows = f.rows
	return out
}

// Drop returns a copy without the named columns; absent names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	out := &Frame{index: map[string]int{}, rows: f.rows}
	for i, n := range f.names {
		if containsName(names, n) {
			continue
		}
		_ = out.Set(n, f.cols[i])
	}
	out.rows = f.rows
	return out
}

// Select returns a copy holding exactly names, in that order.
func (f *Frame) Select(names []string) (*Frame, error) {
	if missing := f.Missing(names); len(missing) > 0 {
		return nil, pkgerrors.MissingColumns("select", missing...)
	}
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j] = f.cols[f.index[n]]
	}
	out, err := NewFrame(names, cols)
	if err != nil {
		return nil, err
	}
	out.rows = f.rows
	return out, nil
}

// Take returns the rows at idx, in idx order.
func (f *Frame) Take(idx []int) *Frame {
	out := &Frame{index: map[string]int{}, rows: len(idx)}
	for j, n := range f.names {
		col := make([]float64, len(idx))
		for i, r := range idx {
			col[i] = f.cols[j][r]
		}
		out.index[n] = len(out.names)
		out.names = append(out.names, n)
		out.cols = append(out.cols, col)
	}
	return out
}

func (f *Frame) Row(i int) Record {
	rec := make(Record, len(f.names))
	for j, n := range f.names {
		rec[n] = f.cols[j][i]
	}
	return rec
}

func (f *Frame) Records() []Record {
	out := make([]Record, f.rows)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}
