// Package operator implements NanoDB's pull-iterator relational operators:
// FileScan, Projection, and MergeSort, per spec.md 4.6. All operators are
// lazy, single-pass, and non-restartable unless stated otherwise.
package operator

import (
	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/record"
)

// Iterator is the common pull interface every relational operator
// implements: Next yields the next (RecordID, Tuple) pair, or ok=false when
// exhausted.
type Iterator interface {
	Next() (heap.RecordID, *record.Tuple, bool, error)
	Schema() *record.Schema
}

// FileScan wraps a raw heap file scan and decorates each row with a schema.
type FileScan struct {
	scan   *heap.RawScan
	schema *record.Schema
}

// NewFileScan builds a schema-aware scan over file.
func NewFileScan(file *heap.File, schema *record.Schema) *FileScan {
	return &FileScan{scan: heap.NewRawScan(file), schema: schema}
}

// Schema returns the scan's schema.
func (s *FileScan) Schema() *record.Schema { return s.schema }

// Next returns the next live tuple in page-link order.
func (s *FileScan) Next() (heap.RecordID, *record.Tuple, bool, error) {
	rid, data, ok, err := s.scan.GetNext()
	if err != nil || !ok {
		return heap.RecordID{}, nil, false, err
	}
	t, err := record.TupleFromBytes(s.schema, data)
	if err != nil {
		return heap.RecordID{}, nil, false, err
	}
	return rid, t, true, nil
}
