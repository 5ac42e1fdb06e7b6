// Package catalog implements NanoDB's self-describing attribute catalog: a
// well-known heap file named attr_ whose tuples describe every relation's
// attributes, including its own. Grounded on spec.md 4.7 and 3 (Catalog),
// and on the teacher's internal/catalog/model.go (TableMeta{Name, Columns})
// generalized into a heap-file-backed, self-describing table instead of a
// JSON sidecar.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/operator"
	"github.com/nanodb/nanodb/internal/record"
)

// RelationName is the catalog's own well-known heap file name.
const RelationName = "attr_"

// Fixed-width bounds for the catalog's own varchar columns, chosen at build
// time since the catalog cannot describe itself before it exists.
const (
	aNameWidth = 20
	rNameWidth = 20
	typeWidth  = 10
)

// TypeName constants matching the statement surface spec.md 4.7 describes.
const (
	TypeInt     = "int"
	TypeVarchar = "varchar"
)

// Schema is the catalog's own fixed schema: (aname, rname, type_, size,
// position).
func Schema() *record.Schema {
	return record.NewSchema([]record.Field{
		{Name: "aname", Type: record.Varchar, Width: aNameWidth},
		{Name: "rname", Type: record.Varchar, Width: rNameWidth},
		{Name: "type_", Type: record.Varchar, Width: typeWidth},
		{Name: "size", Type: record.Int},
		{Name: "position", Type: record.Int},
	})
}

// ColumnDef describes one column of a new relation, as produced by the
// external parser for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string // "int" or "varchar"
	Size int    // varchar width; ignored for int
}

// AttrRow is one decoded catalog row.
type AttrRow struct {
	AName    string
	RName    string
	TypeName string
	Size     int
	Position int
}

// Catalog wraps the attr_ heap file.
type Catalog struct {
	buf    *buffer.Manager
	dir    *heap.Directory
	file   *heap.File
	logger *slog.Logger
}

// Open opens (creating if absent) the attr_ heap file and ensures its
// self-describing rows are present. Safe to call on every database open:
// it detects existing self-description rows instead of reseeding, resolving
// spec.md's open question about catalog bootstrap idempotence.
func Open(buf *buffer.Manager, dir *heap.Directory, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema := Schema()
	file, err := heap.OpenFile(buf, dir, RelationName, schema.Size(), logger)
	if err != nil {
		file, err = heap.CreateFile(buf, dir, RelationName, schema.Size(), logger)
		if err != nil {
			return nil, fmt.Errorf("catalog: open: %w", err)
		}
	}
	c := &Catalog{buf: buf, dir: dir, file: file, logger: logger}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// init seeds the five rows describing the catalog's own schema, unless they
// are already present.
func (c *Catalog) init() error {
	rows, err := c.describe(RelationName)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		c.logger.Debug("catalog: self-description already present, skipping seed")
		return nil
	}
	self := Schema()
	for i, f := range self.Fields() {
		size := f.Width
		if f.Type == record.Int {
			size = 1
		}
		typeName := TypeInt
		if f.Type == record.Varchar {
			typeName = TypeVarchar
		}
		if err := c.addAttr(f.Name, RelationName, typeName, size, i); err != nil {
			return err
		}
	}
	c.logger.Debug("catalog: seeded self-description rows")
	return nil
}

func (c *Catalog) addAttr(aname, rname, typeName string, size, position int) error {
	t := record.NewTuple(Schema())
	if err := t.SetVarcharField(0, aname); err != nil {
		return err
	}
	if err := t.SetVarcharField(1, rname); err != nil {
		return err
	}
	if err := t.SetVarcharField(2, typeName); err != nil {
		return err
	}
	if err := t.SetIntField(3, int32(size)); err != nil {
		return err
	}
	if err := t.SetIntField(4, int32(position)); err != nil {
		return err
	}
	_, err := c.file.Insert(t.Bytes())
	return err
}

// describe scans the catalog for every row with rname == name, sorted by
// position.
func (c *Catalog) describe(name string) ([]AttrRow, error) {
	schema := Schema()
	scan := operator.NewFileScan(c.file, schema)
	var rows []AttrRow
	for {
		_, t, ok, err := scan.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rname, err := t.GetVarcharField(1)
		if err != nil {
			return nil, err
		}
		if rname != name {
			continue
		}
		aname, err := t.GetVarcharField(0)
		if err != nil {
			return nil, err
		}
		typeName, err := t.GetVarcharField(2)
		if err != nil {
			return nil, err
		}
		size, err := t.GetIntField(3)
		if err != nil {
			return nil, err
		}
		position, err := t.GetIntField(4)
		if err != nil {
			return nil, err
		}
		rows = append(rows, AttrRow{AName: aname, RName: rname, TypeName: typeName, Size: int(size), Position: int(position)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

// Describe returns name's attribute rows, sorted by declared position.
// Fails RelationNotFound if name is unknown to the catalog.
func (c *Catalog) Describe(name string) ([]AttrRow, error) {
	rows, err := c.describe(name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog: no relation named %q: %w", name, nerrors.ErrRelationNotFound)
	}
	return rows, nil
}

// ReconstructSchema builds a record.Schema from name's catalog rows.
func (c *Catalog) ReconstructSchema(name string) (*record.Schema, error) {
	rows, err := c.Describe(name)
	if err != nil {
		return nil, err
	}
	defs := make([]record.Field, len(rows))
	for i, r := range rows {
		switch r.TypeName {
		case TypeInt:
			defs[i] = record.Field{Name: r.AName, Type: record.Int}
		case TypeVarchar:
			defs[i] = record.Field{Name: r.AName, Type: record.Varchar, Width: r.Size}
		default:
			return nil, fmt.Errorf("catalog: relation %q column %q has unknown type %q: %w",
				name, r.AName, r.TypeName, nerrors.ErrInvalidArg)
		}
	}
	return record.NewSchema(defs), nil
}

// AddRelation registers columns as a new relation's attributes, in
// declaration order.
func (c *Catalog) AddRelation(name string, columns []ColumnDef) error {
	for i, col := range columns {
		var (
			typeName string
			size     int
		)
		switch col.Type {
		case TypeInt:
			typeName, size = TypeInt, 1
		case TypeVarchar:
			typeName, size = TypeVarchar, col.Size
		default:
			return fmt.Errorf("catalog: column %q has unknown type %q: %w", col.Name, col.Type, nerrors.ErrInvalidArg)
		}
		if err := c.addAttr(col.Name, name, typeName, size, i); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRelation deletes every catalog row describing name (DROP TABLE
// support).
func (c *Catalog) RemoveRelation(name string) error {
	schema := Schema()
	scan := operator.NewFileScan(c.file, schema)
	var toDelete []func() error
	for {
		rid, t, ok, err := scan.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rname, err := t.GetVarcharField(1)
		if err != nil {
			return err
		}
		if rname == name {
			id := rid
			toDelete = append(toDelete, func() error { return c.file.Delete(id) })
		}
	}
	for _, del := range toDelete {
		if err := del(); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether name is a known relation.
func (c *Catalog) Exists(name string) (bool, error) {
	rows, err := c.describe(name)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
