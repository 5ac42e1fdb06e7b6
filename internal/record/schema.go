// Package record implements NanoDB's schema and tuple codec: field names,
// typed attributes with precomputed offsets, and fixed-frame encode/decode.
// Grounded on the teacher's internal/record/schema.go (ColumnType enum,
// Column{Name, Type}, Schema{Cols}) generalized with offset precomputation
// and a tuple codec, per spec 4.5.
package record

import (
	"fmt"

	"github.com/nanodb/nanodb/internal/nerrors"
)

// AttrType is a field's storage type.
type AttrType int

const (
	// Int is a 4-byte little-endian two's-complement integer field.
	Int AttrType = iota
	// Varchar is a fixed-width, NUL-terminated-on-write byte field.
	Varchar
)

func (t AttrType) String() string {
	switch t {
	case Int:
		return "int"
	case Varchar:
		return "varchar"
	default:
		return "unknown"
	}
}

// Field describes one attribute of a schema: its name, type, declared width
// (4 for Int, n for Varchar(n)), and its precomputed byte offset within the
// record frame.
type Field struct {
	Name   string
	Type   AttrType
	Width  int
	Offset int
}

// Schema is an ordered list of fields with precomputed offsets, so
// encode/decode is O(1) per field.
type Schema struct {
	fields []Field
	size   int
}

// NewSchema builds a schema from (name, type, width) triples. width is
// ignored for Int fields (always 4). Offsets are a prefix sum of field
// widths, in declaration order.
func NewSchema(defs []Field) *Schema {
	fields := make([]Field, len(defs))
	offset := 0
	for i, d := range defs {
		width := d.Width
		if d.Type == Int {
			width = 4
		}
		fields[i] = Field{Name: d.Name, Type: d.Type, Width: width, Offset: offset}
		offset += width
	}
	return &Schema{fields: fields, size: offset}
}

// Len reports the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Size reports the total record frame width in bytes.
func (s *Schema) Size() int { return s.size }

// Field returns the i-th field descriptor.
func (s *Schema) Field(i int) (Field, error) {
	if i < 0 || i >= len(s.fields) {
		return Field{}, fmt.Errorf("schema: field index %d out of range: %w", i, nerrors.ErrInvalidArg)
	}
	return s.fields[i], nil
}

// Fields returns all field descriptors, in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// IndexOf returns the index of the field named name, or InvalidArg if absent.
func (s *Schema) IndexOf(name string) (int, error) {
	for i, f := range s.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("schema: no field named %q: %w", name, nerrors.ErrInvalidArg)
}

// Projection returns a new schema selecting the fields at indices, in the
// given order, with offsets recomputed for the narrower frame.
func (s *Schema) Projection(indices []int) (*Schema, error) {
	defs := make([]Field, len(indices))
	for j, idx := range indices {
		f, err := s.Field(idx)
		if err != nil {
			return nil, fmt.Errorf("schema: projection index %d: %w", idx, err)
		}
		defs[j] = Field{Name: f.Name, Type: f.Type, Width: f.Width}
	}
	return NewSchema(defs), nil
}
