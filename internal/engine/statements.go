// Package engine implements NanoDB's catalog-backed executor: it dispatches
// already-parsed statement values through the heap file, schema, and
// operator layers. Grounded on the teacher's internal/sql/executor/executor.go
// (Result, Executor, execPlan switch over statement kinds), generalized to
// spec.md's much smaller statement surface (no WHERE, no UPDATE/DELETE, no
// indexes) since the SQL parser itself is an external collaborator.
package engine

import "github.com/nanodb/nanodb/internal/catalog"

// Value is a single literal as the external parser would hand it to the
// executor: an integer literal or a single-quoted string literal.
type Value struct {
	isInt     bool
	intVal    int32
	stringVal string
}

// IntValue builds an integer literal value.
func IntValue(v int32) Value { return Value{isInt: true, intVal: v} }

// StringValue builds a string literal value.
func StringValue(s string) Value { return Value{stringVal: s} }

// IsInt reports whether the value is an integer literal.
func (v Value) IsInt() bool { return v.isInt }

// Int returns the value's integer payload.
func (v Value) Int() int32 { return v.intVal }

// String returns the value's string payload.
func (v Value) String() string { return v.stringVal }

// ColumnDef describes one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name string
	Type string // catalog.TypeInt or catalog.TypeVarchar
	Size int    // varchar width; ignored for int
}

// CreateTable is the statement value for `CREATE TABLE name (col type, …)`.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

// DropTable is the statement value for `DROP TABLE name`.
type DropTable struct {
	Name string
}

// InsertInto is the statement value for `INSERT INTO name VALUES (v, …)`.
type InsertInto struct {
	Name   string
	Values []Value
}

// Select is the statement value for `SELECT col, … FROM name`.
type Select struct {
	Name    string
	Columns []string
}

// SelectResult is what a Select statement returns: the resolved column
// names, the projected rows in scan order, and the scanned row count
// (bookkeeping the executor already has in hand while pulling the operator
// tree to exhaustion — supplements spec.md with cardinality reporting
// without adding an aggregation pipeline).
type SelectResult struct {
	Columns  []string
	Rows     [][]Value
	RowCount int
}

func toCatalogColumns(cols []ColumnDef) []catalog.ColumnDef {
	out := make([]catalog.ColumnDef, len(cols))
	for i, c := range cols {
		out[i] = catalog.ColumnDef{Name: c.Name, Type: c.Type, Size: c.Size}
	}
	return out
}
