package heap

import (
	"fmt"
	"log/slog"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
)

// RecordID is a tuple's stable identity: (page_id, slot_no). Stable across
// updates; slots are never compacted.
type RecordID struct {
	PageID disk.PageID
	SlotNo int
}

func (r RecordID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.SlotNo)
}

// Less orders RecordIDs lexicographically by (page_id, slot_no).
func (r RecordID) Less(other RecordID) bool {
	if r.PageID != other.PageID {
		return r.PageID < other.PageID
	}
	return r.SlotNo < other.SlotNo
}

// File is a named heap file: a sequence of record pages threaded by
// next_page_id, with a fixed R-byte record frame width. Grounded on
// original_source/src/filemgr/heap_file.rs's HeapFile/insert_record_page
// recursion and the teacher's internal/heap/table.go Insert-growth loop.
type File struct {
	buf        *buffer.Manager
	dir        *Directory
	name       string
	entryIndex int
	headPageID disk.PageID
	r          int
	logger     *slog.Logger
}

// CreateFile allocates a fresh record page, writes it as an empty record
// page, and records it in a new directory entry. Fails InvalidArg if name
// already exists.
func CreateFile(buf *buffer.Manager, dir *Directory, name string, r int, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, _, err := dir.Find(name); err == nil {
		return nil, fmt.Errorf("heap: create file %q: already exists: %w", name, nerrors.ErrInvalidArg)
	}

	pid, p, err := buf.CreatePage()
	if err != nil {
		return nil, err
	}
	if err := InitRecordPage(p, disk.DirectoryPageID); err != nil {
		buf.UnpinPage(pid)
		return nil, err
	}
	if err := buf.UnpinPage(pid); err != nil {
		return nil, err
	}

	idx, err := dir.NewEntry()
	if err != nil {
		return nil, err
	}
	if err := dir.SetEntry(idx, pid, name); err != nil {
		return nil, err
	}

	logger.Debug("heap: created file", "name", name, "headPageID", pid)
	return &File{buf: buf, dir: dir, name: name, entryIndex: idx, headPageID: pid, r: r, logger: logger}, nil
}

// OpenFile finds name in the directory and returns a File bound to its head
// page. Fails RelationNotFound if absent.
func OpenFile(buf *buffer.Manager, dir *Directory, name string, r int, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idx, head, err := dir.Find(name)
	if err != nil {
		return nil, err
	}
	return &File{buf: buf, dir: dir, name: name, entryIndex: idx, headPageID: head, r: r, logger: logger}, nil
}

// Name returns the heap file's name.
func (f *File) Name() string { return f.name }

// HeadPageID returns the heap file's first record page.
func (f *File) HeadPageID() disk.PageID { return f.headPageID }

// RecordWidth returns the fixed record frame width R.
func (f *File) RecordWidth() int { return f.r }

// Insert appends data (len(data) == R) to the heap file: attempts add_slot
// on each linked page, falling back to a scan for a free slot on a full
// page, and finally linking a fresh page when next_page_id is 0.
func (f *File) Insert(data []byte) (RecordID, error) {
	if len(data) != f.r {
		return RecordID{}, fmt.Errorf("heap: insert frame of %d bytes, want %d: %w", len(data), f.r, nerrors.ErrInvalidArg)
	}
	return f.insertAt(f.headPageID, data)
}

func (f *File) insertAt(pid disk.PageID, data []byte) (RecordID, error) {
	var (
		rid   RecordID
		wrote bool
		next  disk.PageID
	)
	err := f.buf.WithPage(pid, false, func(p *page.Page) error {
		n, err := NumSlots(p)
		if err != nil {
			return err
		}
		capacity := RecordPageCapacity(p.Size(), f.r)
		if n < capacity {
			slot, err := AddSlot(p, f.r, data)
			if err != nil {
				return err
			}
			rid, wrote = RecordID{PageID: pid, SlotNo: slot}, true
			return f.buf.MarkDirty(pid)
		}
		for i := 0; i < n; i++ {
			free, err := IsFreeSlot(p, i)
			if err != nil {
				return err
			}
			if free {
				if err := SetSlot(p, i, f.r, data); err != nil {
					return err
				}
				rid, wrote = RecordID{PageID: pid, SlotNo: i}, true
				return f.buf.MarkDirty(pid)
			}
		}
		next, err = NextPageID(p)
		return err
	})
	if err != nil {
		return RecordID{}, err
	}
	if wrote {
		return rid, nil
	}
	if next != disk.NullPageID {
		return f.insertAt(next, data)
	}

	newPid, newPage, err := f.buf.CreatePage()
	if err != nil {
		return RecordID{}, err
	}
	if err := InitRecordPage(newPage, pid); err != nil {
		f.buf.UnpinPage(newPid)
		return RecordID{}, err
	}
	if err := f.buf.UnpinPage(newPid); err != nil {
		return RecordID{}, err
	}
	if err := f.buf.WithPage(pid, false, func(p *page.Page) error {
		if err := SetNextPageID(p, newPid); err != nil {
			return err
		}
		return f.buf.MarkDirty(pid)
	}); err != nil {
		return RecordID{}, err
	}
	f.logger.Debug("heap: linked new record page", "file", f.name, "prevPageID", pid, "newPageID", newPid)
	return f.insertAt(newPid, data)
}

// Get returns the R-byte frame at rid. Fails InvalidArg if the slot is free.
func (f *File) Get(rid RecordID) ([]byte, error) {
	var data []byte
	err := f.buf.WithPage(rid.PageID, false, func(p *page.Page) error {
		d, err := GetSlot(p, rid.SlotNo, f.r)
		if err != nil {
			return err
		}
		data = d
		return nil
	})
	return data, err
}

// Update overwrites the body of an already-occupied slot without changing
// its occupancy or RecordID.
func (f *File) Update(rid RecordID, data []byte) error {
	if len(data) != f.r {
		return fmt.Errorf("heap: update frame of %d bytes, want %d: %w", len(data), f.r, nerrors.ErrInvalidArg)
	}
	return f.buf.WithPage(rid.PageID, false, func(p *page.Page) error {
		if err := SetSlot(p, rid.SlotNo, f.r, data); err != nil {
			return err
		}
		return f.buf.MarkDirty(rid.PageID)
	})
}

// Delete clears rid's occupancy bit. No compaction; the slot remains
// addressable but unreadable until reused by a future Insert.
func (f *File) Delete(rid RecordID) error {
	return f.buf.WithPage(rid.PageID, false, func(p *page.Page) error {
		if err := SetSlotBit(p, rid.SlotNo, false); err != nil {
			return err
		}
		return f.buf.MarkDirty(rid.PageID)
	})
}

// Capacity returns the maximum slot count of a record page for this file's
// record width.
func (f *File) Capacity() int {
	return RecordPageCapacity(f.buf.PageSize(), f.r)
}

// PageSize exposes the fixed page size used by this heap file's backing
// buffer manager.
func (f *File) PageSize() int { return f.buf.PageSize() }

// PageIDs returns the ids of every record page linked from the head, in
// next_page_id order.
func (f *File) PageIDs() ([]disk.PageID, error) {
	var ids []disk.PageID
	pid := f.headPageID
	for pid != disk.NullPageID {
		ids = append(ids, pid)
		var next disk.PageID
		if err := f.buf.WithPage(pid, false, func(p *page.Page) error {
			n, err := NextPageID(p)
			next = n
			return err
		}); err != nil {
			return nil, err
		}
		pid = next
	}
	return ids, nil
}

// WithPage exposes scoped pin/use/unpin access to one of the file's record
// pages, for callers (MergeSort) that need direct slot manipulation.
func (f *File) WithPage(pid disk.PageID, mutate bool, fn func(p *page.Page) error) error {
	return f.buf.WithPage(pid, mutate, fn)
}

// Destroy deallocates every page linked from the heap file and zeros its
// directory entry. Supplements spec.md's own design note inviting a
// destroy_file extension once CreateTable/DROP TABLE need one.
func (f *File) Destroy() error {
	pid := f.headPageID
	for pid != disk.NullPageID {
		var next disk.PageID
		if err := f.buf.WithPage(pid, false, func(p *page.Page) error {
			n, err := NextPageID(p)
			next = n
			return err
		}); err != nil {
			return err
		}
		if err := f.buf.FreePage(pid); err != nil {
			return err
		}
		pid = next
	}
	return f.dir.ClearEntry(f.entryIndex)
}
