package dataset

import (
	"errors"
	"fmt"
)

// Row maps a column name to its cell. Keys are a subset of the dataset's columns;
// an absent key reads as Null.
type Row map[string]Value

// Get returns the cell for column, Null when absent.
func (r Row) Get(column string) Value {
	if r == nil {
		return Null()
	}
	return r[column]
}

// Column describes one column. Type is the declared type string from the source,
// if any; it is a hint, not a schema.
type Column struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	MissingCount int    `json:"missing_count"`
	UniqueCount  int    `json:"unique_count"`
}

// Dataset is an in-memory table. Column order is display order only.
type Dataset struct {
	Name    string   `json:"name,omitempty"`
	Rows    []Row    `json:"data"`
	Columns []Column `json:"columns"`
}

var ErrNoColumns = errors.New("dataset has no columns")

// ColumnNames returns the declared column names in order.
func (d *Dataset) ColumnNames() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column descriptor by name.
func (d *Dataset) Column(name string) (Column, bool) {
	if d == nil {
		return Column{}, false
	}
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks the row/column invariant: every row key is a declared column.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New("dataset is nil")
	}
	if len(d.Columns) == 0 {
		return ErrNoColumns
	}
	known := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		known[c.Name] = struct{}{}
	}
	for i, r := range d.Rows {
		for k := range r {
			if _, ok := known[k]; !ok {
				return fmt.Errorf("row %d: unknown column %q", i, k)
			}
		}
	}
	return nil
}

// Describe recomputes MissingCount and UniqueCount for every column.
// Unique counts are taken over non-missing string coercions.
func (d *Dataset) Describe() {
	if d == nil {
		return
	}
	for i := range d.Columns {
		name := d.Columns[i].Name
		seen := make(map[string]struct{})
		missing := 0
		for _, r := range d.Rows {
			v := r.Get(name)
			if v.IsMissing() {
				missing++
				continue
			}
			seen[v.String()] = struct{}{}
		}
		d.Columns[i].MissingCount = missing
		d.Columns[i].UniqueCount = len(seen)
	}
}

// Head returns at most n leading rows without copying.
func Head(rows []Row, n int) []Row {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// CloneRows deep-copies rows so the copy cannot observe later mutation.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		if r == nil {
			continue
		}
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
