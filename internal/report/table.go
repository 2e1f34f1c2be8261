// Package report writes analysis tables to CSV, XLSX, Parquet and JSON.
package report

import (
	"strconv"
	"strings"
)

// Table is a named rectangular dataset. Every row has len(Columns) cells.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable returns an empty table with the given columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: columns, Rows: [][]string{}}
}

// Append adds a row, padding or cutting it to the column count.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Find returns the table with the given name.
func Find(tables []Table, name string) (*Table, bool) {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i], true
		}
	}
	return nil, false
}

// Names lists table names in order.
func Names(tables []Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

// Float formats a value with the shortest exact representation.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fixed formats a value with two decimals. Used for percentages and scores.
func Fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Int formats an integer.
func Int(n int) string {
	return strconv.Itoa(n)
}

// Bool formats a boolean.
func Bool(b bool) string {
	return strconv.FormatBool(b)
}

// List joins set-valued cells.
func List(items []string) string {
	return strings.Join(items, ", ")
}
