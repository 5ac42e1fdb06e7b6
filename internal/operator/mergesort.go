package operator

import (
	"fmt"

	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
	"github.com/nanodb/nanodb/internal/record"
)

// ErrTooManyPages is returned by Sort when the relation spans more than two
// record pages. The reference implementation panics past this limit; spec.md
// requires a recoverable, structured error instead (design note "MergeSort
// restricted to <= 2 pages").
var ErrTooManyPages = fmt.Errorf("operator: mergesort supports at most 2 pages: %w", nerrors.ErrInvalidArg)

// Sort is the MergeSort operator: it physically sorts a heap file by an Int
// key column, in place.
// Limited to at most two record pages. Algorithm (spec.md 4.6):
//
//   - Pass 0: per-page insertion sort via SwapSlot.
//   - Pass 1: 2-way merge of the (at most two) pages' live tuples into
//     memory, then truncate every page and re-insert in sorted order.
func Sort(file *heap.File, schema *record.Schema, keyIndex int) error {
	if _, err := schema.Field(keyIndex); err != nil {
		return fmt.Errorf("operator: mergesort: %w", err)
	}
	pageIDs, err := file.PageIDs()
	if err != nil {
		return err
	}
	if len(pageIDs) > 2 {
		return ErrTooManyPages
	}

	for _, pid := range pageIDs {
		if err := insertionSortPage(file, pid, schema, keyIndex); err != nil {
			return err
		}
	}

	merged, err := mergePages(file, pageIDs, schema, keyIndex)
	if err != nil {
		return err
	}

	for _, pid := range pageIDs {
		if err := file.WithPage(pid, true, func(p *page.Page) error {
			return heap.FreeAll(p, file.RecordWidth())
		}); err != nil {
			return err
		}
	}
	for _, frame := range merged {
		if _, err := file.Insert(frame); err != nil {
			return err
		}
	}
	return nil
}

func keyOf(schema *record.Schema, frame []byte, keyIndex int) (int32, error) {
	t, err := record.TupleFromBytes(schema, frame)
	if err != nil {
		return 0, err
	}
	return t.GetIntField(keyIndex)
}

// insertionSortPage bubbles each slot leftward by SwapSlot until the left
// neighbor's key is <= its key, operating on body bytes and occupancy bit
// together.
func insertionSortPage(file *heap.File, pid disk.PageID, schema *record.Schema, keyIndex int) error {
	return file.WithPage(pid, true, func(p *page.Page) error {
		n, err := heap.NumSlots(p)
		if err != nil {
			return err
		}
		r := file.RecordWidth()
		for i := 1; i < n; i++ {
			j := i
			for j > 0 {
				leftFree, err := heap.IsFreeSlot(p, j-1)
				if err != nil {
					return err
				}
				curFree, err := heap.IsFreeSlot(p, j)
				if err != nil {
					return err
				}
				if curFree {
					break
				}
				if leftFree {
					if err := heap.SwapSlot(p, j-1, j, r); err != nil {
						return err
					}
					j--
					continue
				}
				leftData, err := heap.GetSlot(p, j-1, r)
				if err != nil {
					return err
				}
				curData, err := heap.GetSlot(p, j, r)
				if err != nil {
					return err
				}
				leftKey, err := keyOf(schema, leftData, keyIndex)
				if err != nil {
					return err
				}
				curKey, err := keyOf(schema, curData, keyIndex)
				if err != nil {
					return err
				}
				if leftKey <= curKey {
					break
				}
				if err := heap.SwapSlot(p, j-1, j, r); err != nil {
					return err
				}
				j--
			}
		}
		return nil
	})
}

// mergePages opens one restricted scan per page and repeatedly emits the
// smaller-keyed live tuple, collecting the merged sequence in memory.
func mergePages(file *heap.File, pageIDs []disk.PageID, schema *record.Schema, keyIndex int) ([][]byte, error) {
	type cursor struct {
		scan *heap.RawScan
		data []byte
		ok   bool
	}
	cursors := make([]*cursor, len(pageIDs))
	for i, pid := range pageIDs {
		c := &cursor{scan: heap.NewFileScanOnPage(file, pid)}
		_, data, ok, err := c.scan.GetNext()
		if err != nil {
			return nil, err
		}
		c.data, c.ok = data, ok
		cursors[i] = c
	}

	var merged [][]byte
	for {
		best := -1
		var bestKey int32
		for i, c := range cursors {
			if !c.ok {
				continue
			}
			k, err := keyOf(schema, c.data, keyIndex)
			if err != nil {
				return nil, err
			}
			if best < 0 || k < bestKey {
				best, bestKey = i, k
			}
		}
		if best < 0 {
			break
		}
		merged = append(merged, cursors[best].data)
		_, data, ok, err := cursors[best].scan.GetNext()
		if err != nil {
			return nil, err
		}
		cursors[best].data, cursors[best].ok = data, ok
	}
	return merged, nil
}
