package engine

import (
	"fmt"
	"log/slog"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/catalog"
	"github.com/nanodb/nanodb/internal/config"
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/operator"
	"github.com/nanodb/nanodb/internal/record"
)

// Database is NanoDB's top-level facade: it owns the disk manager, buffer
// manager, directory and catalog, and dispatches statement values through
// the heap file, schema, and operator layers.
type Database struct {
	cfg    config.Config
	disk   *disk.Manager
	buf    *buffer.Manager
	dir    *heap.Directory
	cat    *catalog.Catalog
	logger *slog.Logger
}

// Open opens (creating if absent) the database file named by cfg, brings up
// the buffer manager and directory, and opens the catalog.
func Open(cfg config.Config, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d, err := disk.Open(cfg.DatabaseFile, cfg.PageSize, cfg.NumPages, logger)
	if err != nil {
		return nil, fmt.Errorf("engine: open: %w", err)
	}
	buf := buffer.New(d, cfg.BufferPoolCapacity, logger)
	dir := heap.NewDirectory(buf, cfg.DirectoryNameWidth, cfg.MaxDirectoryEntries)
	if err := dir.InitIfNeeded(); err != nil {
		return nil, fmt.Errorf("engine: open: %w", err)
	}
	cat, err := catalog.Open(buf, dir, logger)
	if err != nil {
		return nil, fmt.Errorf("engine: open: %w", err)
	}
	logger.Debug("engine: database opened", "path", cfg.DatabaseFile)
	return &Database{cfg: cfg, disk: d, buf: buf, dir: dir, cat: cat, logger: logger}, nil
}

// Close flushes every dirty page and closes the backing file.
func (db *Database) Close() error {
	return db.buf.Close()
}

func (db *Database) openRelation(name string) (*heap.File, *record.Schema, error) {
	schema, err := db.cat.ReconstructSchema(name)
	if err != nil {
		return nil, nil, err
	}
	file, err := heap.OpenFile(db.buf, db.dir, name, schema.Size(), db.logger)
	if err != nil {
		return nil, nil, err
	}
	return file, schema, nil
}

// Execute runs stmt, one of CreateTable, DropTable, InsertInto, or Select.
// Select returns a non-nil *SelectResult; every other statement returns nil.
func (db *Database) Execute(stmt interface{}) (*SelectResult, error) {
	switch s := stmt.(type) {
	case CreateTable:
		return nil, db.createTable(s)
	case DropTable:
		return nil, db.dropTable(s)
	case InsertInto:
		return nil, db.insertInto(s)
	case Select:
		return db.selectFrom(s)
	default:
		return nil, fmt.Errorf("engine: unknown statement type %T: %w", stmt, nerrors.ErrInvalidArg)
	}
}

func (db *Database) createTable(s CreateTable) error {
	exists, err := db.cat.Exists(s.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("engine: create table %q: already exists: %w", s.Name, nerrors.ErrInvalidArg)
	}
	schema, err := db.columnsToSchema(s.Columns)
	if err != nil {
		return err
	}
	if _, err := heap.CreateFile(db.buf, db.dir, s.Name, schema.Size(), db.logger); err != nil {
		return err
	}
	if err := db.cat.AddRelation(s.Name, toCatalogColumns(s.Columns)); err != nil {
		return err
	}
	db.logger.Debug("engine: created table", "name", s.Name, "columns", len(s.Columns))
	return nil
}

func (db *Database) columnsToSchema(cols []ColumnDef) (*record.Schema, error) {
	defs := make([]record.Field, len(cols))
	for i, c := range cols {
		switch c.Type {
		case catalog.TypeInt:
			defs[i] = record.Field{Name: c.Name, Type: record.Int}
		case catalog.TypeVarchar:
			defs[i] = record.Field{Name: c.Name, Type: record.Varchar, Width: c.Size}
		default:
			return nil, fmt.Errorf("engine: column %q has unknown type %q: %w", c.Name, c.Type, nerrors.ErrInvalidArg)
		}
	}
	return record.NewSchema(defs), nil
}

func (db *Database) dropTable(s DropTable) error {
	file, _, err := db.openRelation(s.Name)
	if err != nil {
		return err
	}
	if err := file.Destroy(); err != nil {
		return err
	}
	if err := db.cat.RemoveRelation(s.Name); err != nil {
		return err
	}
	db.logger.Debug("engine: dropped table", "name", s.Name)
	return nil
}

func (db *Database) insertInto(s InsertInto) error {
	file, schema, err := db.openRelation(s.Name)
	if err != nil {
		return err
	}
	if len(s.Values) != schema.Len() {
		return fmt.Errorf("engine: insert into %q: got %d values, schema has %d fields: %w",
			s.Name, len(s.Values), schema.Len(), nerrors.ErrInvalidArg)
	}
	t := record.NewTuple(schema)
	for i, v := range s.Values {
		f, err := schema.Field(i)
		if err != nil {
			return err
		}
		switch f.Type {
		case record.Int:
			if !v.IsInt() {
				return fmt.Errorf("engine: insert into %q: field %q expects int: %w", s.Name, f.Name, nerrors.ErrTypeMismatch)
			}
			if err := t.SetIntField(i, v.Int()); err != nil {
				return err
			}
		case record.Varchar:
			if v.IsInt() {
				return fmt.Errorf("engine: insert into %q: field %q expects varchar: %w", s.Name, f.Name, nerrors.ErrTypeMismatch)
			}
			if err := t.SetVarcharField(i, v.String()); err != nil {
				return err
			}
		}
	}
	if _, err := file.Insert(t.Bytes()); err != nil {
		return err
	}
	return nil
}

func (db *Database) selectFrom(s Select) (*SelectResult, error) {
	file, schema, err := db.openRelation(s.Name)
	if err != nil {
		return nil, err
	}
	indices := make([]int, len(s.Columns))
	for i, name := range s.Columns {
		idx, err := schema.IndexOf(name)
		if err != nil {
			return nil, fmt.Errorf("engine: select from %q: %w", s.Name, err)
		}
		indices[i] = idx
	}

	scan := operator.NewFileScan(file, schema)
	proj, err := operator.NewProjection(scan, indices)
	if err != nil {
		return nil, err
	}

	result := &SelectResult{Columns: s.Columns}
	for {
		_, t, ok, err := proj.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := make([]Value, proj.Schema().Len())
		for i, f := range proj.Schema().Fields() {
			switch f.Type {
			case record.Int:
				v, err := t.GetIntField(i)
				if err != nil {
					return nil, err
				}
				row[i] = IntValue(v)
			case record.Varchar:
				v, err := t.GetVarcharField(i)
				if err != nil {
					return nil, err
				}
				row[i] = StringValue(v)
			}
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	return result, nil
}

// Sort physically sorts name's heap file by the Int column keyColumn, per
// spec.md 4.6 MergeSort. Exposed directly (not a statement) since spec.md's
// statement surface has no ORDER BY.
func (db *Database) Sort(name, keyColumn string) error {
	file, schema, err := db.openRelation(name)
	if err != nil {
		return err
	}
	idx, err := schema.IndexOf(keyColumn)
	if err != nil {
		return err
	}
	return operator.Sort(file, schema, idx)
}
