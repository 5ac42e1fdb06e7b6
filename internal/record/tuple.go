package record

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/nanodb/nanodb/internal/nerrors"
)

// Tuple is a fixed-size record frame interpreted by a Schema.
type Tuple struct {
	schema *Schema
	data   []byte
}

// NewTuple allocates a zero-initialized tuple for schema.
func NewTuple(schema *Schema) *Tuple {
	return &Tuple{schema: schema, data: make([]byte, schema.Size())}
}

// TupleFromBytes wraps an existing R-byte frame as a tuple without copying.
// len(data) must equal schema.Size().
func TupleFromBytes(schema *Schema, data []byte) (*Tuple, error) {
	if len(data) != schema.Size() {
		return nil, fmt.Errorf("tuple: frame is %d bytes, schema wants %d: %w",
			len(data), schema.Size(), nerrors.ErrInvalidArg)
	}
	return &Tuple{schema: schema, data: data}, nil
}

// Schema returns the tuple's schema.
func (t *Tuple) Schema() *Schema { return t.schema }

// Bytes returns the tuple's raw frame.
func (t *Tuple) Bytes() []byte { return t.data }

func (t *Tuple) field(i int, want AttrType) (Field, error) {
	f, err := t.schema.Field(i)
	if err != nil {
		return Field{}, err
	}
	if f.Type != want {
		return Field{}, fmt.Errorf("tuple: field %d (%s) is not %s: %w", i, f.Type, want, nerrors.ErrTypeMismatch)
	}
	return f, nil
}

// SetIntField writes v into the i-th field. Fails TypeMismatch if the field
// is not Int, InvalidArg if i is out of range.
func (t *Tuple) SetIntField(i int, v int32) error {
	f, err := t.field(i, Int)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(t.data[f.Offset:f.Offset+4], uint32(v))
	return nil
}

// GetIntField reads the i-th field as an int32.
func (t *Tuple) GetIntField(i int) (int32, error) {
	f, err := t.field(i, Int)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(t.data[f.Offset : f.Offset+4])), nil
}

// SetVarcharField writes s into the i-th field, NUL-terminated. Fails
// InvalidArg if len(s)+1 exceeds the field width.
func (t *Tuple) SetVarcharField(i int, s string) error {
	f, err := t.field(i, Varchar)
	if err != nil {
		return err
	}
	if len(s)+1 > f.Width {
		return fmt.Errorf("tuple: varchar value of %d bytes does not fit in field %q (width %d): %w",
			len(s), f.Name, f.Width, nerrors.ErrInvalidArg)
	}
	dst := t.data[f.Offset : f.Offset+f.Width]
	for j := range dst {
		dst[j] = 0
	}
	copy(dst, s)
	dst[len(s)] = 0
	return nil
}

// GetVarcharField reads the i-th field up to its first NUL within the field
// window.
func (t *Tuple) GetVarcharField(i int) (string, error) {
	f, err := t.field(i, Varchar)
	if err != nil {
		return "", err
	}
	window := t.data[f.Offset : f.Offset+f.Width]
	if nul := bytes.IndexByte(window, 0); nul >= 0 {
		return string(window[:nul]), nil
	}
	return string(window), nil
}
