package operator

import (
	"fmt"

	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/record"
)

// Projection narrows each child tuple to the fields named by indices, in
// the given order. The output RecordID passes the child's through
// unchanged.
type Projection struct {
	child   Iterator
	indices []int
	schema  *record.Schema
}

// NewProjection builds the projected schema at construction time.
func NewProjection(child Iterator, indices []int) (*Projection, error) {
	schema, err := child.Schema().Projection(indices)
	if err != nil {
		return nil, fmt.Errorf("operator: projection: %w", err)
	}
	return &Projection{child: child, indices: indices, schema: schema}, nil
}

// Schema returns the projected schema.
func (p *Projection) Schema() *record.Schema { return p.schema }

// Next materializes one output frame from the next child tuple.
func (p *Projection) Next() (heap.RecordID, *record.Tuple, bool, error) {
	rid, in, ok, err := p.child.Next()
	if err != nil || !ok {
		return heap.RecordID{}, nil, false, err
	}
	out := record.NewTuple(p.schema)
	for j, idx := range p.indices {
		inField, err := in.Schema().Field(idx)
		if err != nil {
			return heap.RecordID{}, nil, false, err
		}
		switch inField.Type {
		case record.Int:
			v, err := in.GetIntField(idx)
			if err != nil {
				return heap.RecordID{}, nil, false, err
			}
			if err := out.SetIntField(j, v); err != nil {
				return heap.RecordID{}, nil, false, err
			}
		case record.Varchar:
			v, err := in.GetVarcharField(idx)
			if err != nil {
				return heap.RecordID{}, nil, false, err
			}
			if err := out.SetVarcharField(j, v); err != nil {
				return heap.RecordID{}, nil, false, err
			}
		default:
			return heap.RecordID{}, nil, false, fmt.Errorf("operator: projection: unknown field type: %w", nerrors.ErrInvalidArg)
		}
	}
	return rid, out, true, nil
}
