// Package table is the in-memory tabular value every pipeline step consumes
// and produces: an ordered list of rows, each a column-name→value mapping,
// plus the ordered column set used for previews and CSV output.
package table

import (
	"fmt"
	"math"
	"sort"
)

// Row maps a column name to its value. A nil or missing value is null.
type Row map[string]any

// Get returns the value of col, or nil when the row does not carry it.
func (r Row) Get(col string) any { return r[col] }

// Table is not safe for concurrent mutation.
type Table struct {
	columns []string
	rows    []Row
}

// New returns an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{columns: dedupe(columns)}
}

// FromRows builds a table from rows. Columns a row carries that are not listed
// in columns are appended as rows introduce them, in sorted order per row.
func FromRows(columns []string, rows []Row) *Table {
	t := New(columns...)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }
func (t *Table) Rows() []Row       { return t.rows }
func (t *Table) Len() int          { return len(t.rows) }
func (t *Table) Empty() bool       { return len(t.rows) == 0 }

// HasColumn reports whether col is part of the column set.
func (t *Table) HasColumn(col string) bool { return t.index(col) >= 0 }

// AddColumn appends col to the column set if it is not there yet. Existing rows
// read it as null.
func (t *Table) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.columns = append(t.columns, col)
	}
}

// Append adds r and registers any columns it introduces.
func (t *Table) Append(r Row) {
	if r == nil {
		r = Row{}
	}
	for _, k := range sortedKeys(r) {
		t.AddColumn(k)
	}
	t.rows = append(t.rows, r)
}

// RenameColumns renames every column listed in mapping at once, so swaps
// and chains behave as a single step. Absent source columns are ignored. When
// two columns end up with the same name, a renamed column beats one that kept
// its name and the later column beats the earlier; the loser is dropped.
func (t *Table) RenameColumns(mapping map[string]string) {
	targets := make([]string, len(t.columns))
	winner := make(map[string]int, len(t.columns))
	renamed := make(map[int]bool, len(mapping))
	changed := false
	for i, c := range t.columns {
		to, ok := mapping[c]
		if !ok || to == c {
			targets[i] = c
		} else {
			targets[i] = to
			renamed[i] = true
			changed = true
		}
		if w, seen := winner[targets[i]]; !seen || renamed[i] || !renamed[w] {
			winner[targets[i]] = i
		}
	}
	if !changed {
		return
	}

	cols := make([]string, 0, len(winner))
	for i, to := range targets {
		if winner[to] == i {
			cols = append(cols, to)
		}
	}
	for ri, r := range t.rows {
		nr := make(Row, len(r))
		for i, c := range t.columns {
			if v, ok := r[c]; ok && winner[targets[i]] == i {
				nr[targets[i]] = v
			}
		}
		for k, v := range r {
			if !t.HasColumn(k) {
				nr[k] = v
			}
		}
		t.rows[ri] = nr
	}
	t.columns = cols
}

// Select returns a table restricted to cols, in that order. Rows are copied.
func (t *Table) Select(cols ...string) *Table {
	out := New(cols...)
	out.rows = make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// Head returns a table with the first n rows. Rows are shared, not copied.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{columns: t.Columns(), rows: t.rows[:n:n]}
}

// Tail returns a table with the last n rows in their existing order. Rows are
// shared, not copied.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{columns: t.Columns(), rows: t.rows[len(t.rows)-n:]}
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[col]
	}
	return out
}

// Clone deep-copies the row maps; values themselves are shared.
func (t *Table) Clone() *Table {
	out := &Table{columns: t.Columns(), rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.rows[i] = nr
	}
	return out
}

// IsNull reports whether v counts as a missing value: nil or a float NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Format renders v the way CSV output and previews show it.
func Format(v any) string {
	if IsNull(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (t *Table) index(col string) int {
	for i, c := range t.columns {
		if c == col {
			return i
		}
	}
	return -1
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
