// Package heap implements NanoDB's heap file layer: the header/directory
// page, slotted record pages threaded by next_page_id, and the raw file
// scan iterator. Grounded on the teacher's internal/heap/table.go (Table,
// TID, Insert growing on ErrNoSpace) and internal/storage/page.go (slotted
// page with header fields and typed accessors), and on
// original_source/src/filemgr/hfilemgr.rs and heap_file.rs for the
// directory/linked-page/slot-reuse algorithm spec.md describes in prose.
package heap

import (
	"fmt"

	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
)

// Record page layout (P = page size, R = record frame width, K = capacity):
//
//	[0..4)           next_page_id
//	[4..8)           prev_page_id
//	[8..10)          reserved
//	[10..10+K*R)     K slot bodies of R bytes each, slot i at 10+i*R
//	[P-4-K..P-4)     K occupancy bytes, slot i at P-5-i
//	[P-4..P)         num_slots (high-water mark)
const (
	recordPageNextOff = 0
	recordPagePrevOff = 4
	recordPageBodyOff = 10
	recordPageOverhead = 14 // header (10) + num_slots footer (4)
)

// RecordPageCapacity returns the maximum number of slots a record page of
// the given size can hold for frames of width r.
func RecordPageCapacity(pageSize, r int) int {
	k := (pageSize - recordPageOverhead) / (r + 1)
	if k < 0 {
		return 0
	}
	return k
}

func occupancyOffset(pageSize, i int) int {
	return pageSize - 5 - i
}

func numSlotsOffset(pageSize int) int {
	return pageSize - 4
}

func slotBodyOffset(i, r int) int {
	return recordPageBodyOff + i*r
}

// InitRecordPage zeroes p into a fresh, empty record page with the given
// prev link; next_page_id is set to 0 (end of list).
func InitRecordPage(p *page.Page, prev disk.PageID) error {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	if err := p.SetInt32(recordPageNextOff, 0); err != nil {
		return err
	}
	if err := p.SetInt32(recordPagePrevOff, int32(prev)); err != nil {
		return err
	}
	return p.SetInt32(numSlotsOffset(p.Size()), 0)
}

// NextPageID reads the page's next-page link.
func NextPageID(p *page.Page) (disk.PageID, error) {
	v, err := p.GetInt32(recordPageNextOff)
	return disk.PageID(v), err
}

// SetNextPageID sets the page's next-page link.
func SetNextPageID(p *page.Page, pid disk.PageID) error {
	return p.SetInt32(recordPageNextOff, int32(pid))
}

// PrevPageID reads the page's prev-page link.
func PrevPageID(p *page.Page) (disk.PageID, error) {
	v, err := p.GetInt32(recordPagePrevOff)
	return disk.PageID(v), err
}

// SetPrevPageID sets the page's prev-page link.
func SetPrevPageID(p *page.Page, pid disk.PageID) error {
	return p.SetInt32(recordPagePrevOff, int32(pid))
}

// NumSlots returns the page's high-water mark of slots ever added.
func NumSlots(p *page.Page) (int, error) {
	v, err := p.GetInt32(numSlotsOffset(p.Size()))
	return int(v), err
}

func setNumSlots(p *page.Page, n int) error {
	return p.SetInt32(numSlotsOffset(p.Size()), int32(n))
}

// IsFreeSlot reports whether slot i is unoccupied. i must be < NumSlots.
func IsFreeSlot(p *page.Page, i int) (bool, error) {
	b, err := p.GetByte(occupancyOffset(p.Size(), i))
	if err != nil {
		return false, err
	}
	return b == 0, nil
}

// SetSlotBit sets slot i's occupancy flag.
func SetSlotBit(p *page.Page, i int, occupied bool) error {
	var b byte
	if occupied {
		b = 1
	}
	return p.SetByte(occupancyOffset(p.Size(), i), b)
}

// GetSlot reads slot i's R-byte body. Fails InvalidArg if i >= NumSlots or
// the slot is free.
func GetSlot(p *page.Page, i, r int) ([]byte, error) {
	n, err := NumSlots(p)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("heap: slot %d out of range (num_slots=%d): %w", i, n, nerrors.ErrInvalidArg)
	}
	free, err := IsFreeSlot(p, i)
	if err != nil {
		return nil, err
	}
	if free {
		return nil, fmt.Errorf("heap: slot %d is free: %w", i, nerrors.ErrInvalidArg)
	}
	off := slotBodyOffset(i, r)
	body := make([]byte, r)
	copy(body, p.Buf[off:off+r])
	return body, nil
}

// SetSlot writes data into slot i's body and marks it occupied. Fails
// InvalidArg if i >= NumSlots.
func SetSlot(p *page.Page, i, r int, data []byte) error {
	n, err := NumSlots(p)
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return fmt.Errorf("heap: slot %d out of range (num_slots=%d): %w", i, n, nerrors.ErrInvalidArg)
	}
	if len(data) != r {
		return fmt.Errorf("heap: slot write of %d bytes, want %d: %w", len(data), r, nerrors.ErrInvalidArg)
	}
	off := slotBodyOffset(i, r)
	copy(p.Buf[off:off+r], data)
	return SetSlotBit(p, i, true)
}

// AddSlot appends a new slot at index NumSlots, writes data, marks it
// occupied, and bumps the high-water mark. Fails InvalidArg if the page is
// at capacity.
func AddSlot(p *page.Page, r int, data []byte) (int, error) {
	n, err := NumSlots(p)
	if err != nil {
		return 0, err
	}
	capacity := RecordPageCapacity(p.Size(), r)
	if n >= capacity {
		return 0, fmt.Errorf("heap: record page at capacity %d: %w", capacity, nerrors.ErrInvalidArg)
	}
	if len(data) != r {
		return 0, fmt.Errorf("heap: slot write of %d bytes, want %d: %w", len(data), r, nerrors.ErrInvalidArg)
	}
	off := slotBodyOffset(n, r)
	copy(p.Buf[off:off+r], data)
	if err := SetSlotBit(p, n, true); err != nil {
		return 0, err
	}
	if err := setNumSlots(p, n+1); err != nil {
		return 0, err
	}
	return n, nil
}

// SwapSlot exchanges the bodies and occupancy bits of slots i and j. Used by
// the per-page insertion sort pass.
func SwapSlot(p *page.Page, i, j, r int) error {
	if i == j {
		return nil
	}
	oi, oj := slotBodyOffset(i, r), slotBodyOffset(j, r)
	bi := make([]byte, r)
	copy(bi, p.Buf[oi:oi+r])
	copy(p.Buf[oi:oi+r], p.Buf[oj:oj+r])
	copy(p.Buf[oj:oj+r], bi)

	fi, err := IsFreeSlot(p, i)
	if err != nil {
		return err
	}
	fj, err := IsFreeSlot(p, j)
	if err != nil {
		return err
	}
	if err := SetSlotBit(p, i, !fj); err != nil {
		return err
	}
	return SetSlotBit(p, j, !fi)
}

// FreeAll clears the occupancy bit for every slot up to capacity, used by
// MergeSort's truncate-and-reinsert pass, and resets num_slots to 0 so the
// reinsertion can AddSlot from slot 0 again.
func FreeAll(p *page.Page, r int) error {
	capacity := RecordPageCapacity(p.Size(), r)
	for i := 0; i < capacity; i++ {
		if err := SetSlotBit(p, i, false); err != nil {
			return err
		}
	}
	return setNumSlots(p, 0)
}
