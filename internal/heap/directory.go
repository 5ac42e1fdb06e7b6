package heap

import (
	"bytes"
	"fmt"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
)

// Directory entry layout (within the directory page, starting at
// directoryEntriesOffset, entry i at directoryEntriesOffset+i*entrySize):
//
//	[0..4)          first-data-page-id (0 = empty entry)
//	[4..8)          reserved full-list-head slot, currently unused
//	[8..8+nameWidth) fixed-width name
//	[8+nameWidth..+2) padding
const (
	directoryEntriesOffset     = 10
	directoryEntryFirstPageOff = 0
	directoryEntryReservedOff  = 4
	directoryEntryNameOff      = 8
	directoryEntryPadding      = 2
)

func directoryEntrySize(nameWidth int) int {
	return directoryEntryFirstPageOff + 4 + 4 + nameWidth + directoryEntryPadding
}

// Directory is the heap-file directory: a single well-known page (disk.DirectoryPageID)
// holding up to maxEntries file entries. Grounded on spec.md 4.4.1 and
// original_source/src/filemgr/hfilemgr.rs's HeaderPage.new_entry/find.
type Directory struct {
	buf        *buffer.Manager
	nameWidth  int
	maxEntries int
}

// NewDirectory wraps buf's well-known directory page. InitIfNeeded must be
// called once per fresh database file before use.
func NewDirectory(buf *buffer.Manager, nameWidth, maxEntries int) *Directory {
	return &Directory{buf: buf, nameWidth: nameWidth, maxEntries: maxEntries}
}

func (d *Directory) entrySize() int { return directoryEntrySize(d.nameWidth) }

func (d *Directory) entryOffset(i int) int {
	return directoryEntriesOffset + i*d.entrySize()
}

// InitIfNeeded zero-initializes the directory page the first time it is
// used (all entries empty). Safe to call on every open; it is a no-op if
// the page already looks initialized (any entry's first-page-id or name is
// non-zero), matching spec's catalog-bootstrap idempotence requirement
// generalized to the directory itself.
func (d *Directory) InitIfNeeded() error {
	return d.buf.WithPage(disk.DirectoryPageID, true, func(p *page.Page) error {
		allZero := true
		for i := 0; i < d.maxEntries && allZero; i++ {
			off := d.entryOffset(i)
			for _, b := range p.Buf[off : off+d.entrySize()] {
				if b != 0 {
					allZero = false
					break
				}
			}
		}
		if !allZero {
			return nil
		}
		for i := range p.Buf {
			p.Buf[i] = 0
		}
		return nil
	})
}

func (d *Directory) readEntry(p *page.Page, i int) (firstPage disk.PageID, name string, err error) {
	off := d.entryOffset(i)
	fp, err := p.GetInt32(off + directoryEntryFirstPageOff)
	if err != nil {
		return 0, "", err
	}
	raw, err := p.GetVarchar(off+directoryEntryNameOff, d.nameWidth)
	if err != nil {
		return 0, "", err
	}
	if nul := bytes.IndexByte(raw, 0); nul >= 0 {
		raw = raw[:nul]
	}
	return disk.PageID(fp), string(raw), nil
}

func (d *Directory) writeEntry(p *page.Page, i int, firstPage disk.PageID, name string) error {
	off := d.entryOffset(i)
	if err := p.SetInt32(off+directoryEntryFirstPageOff, int32(firstPage)); err != nil {
		return err
	}
	nameBytes := append([]byte(name), 0)
	if len(nameBytes) > d.nameWidth {
		return fmt.Errorf("heap: directory entry name %q exceeds width %d: %w", name, d.nameWidth, nerrors.ErrInvalidArg)
	}
	return p.SetVarchar(off+directoryEntryNameOff, d.nameWidth, nameBytes)
}

// NewEntry returns the lowest entry index with first-data-page-id == 0.
// Fails InvalidArg if the directory is full.
func (d *Directory) NewEntry() (int, error) {
	var idx = -1
	err := d.buf.WithPage(disk.DirectoryPageID, false, func(p *page.Page) error {
		for i := 0; i < d.maxEntries; i++ {
			fp, _, err := d.readEntry(p, i)
			if err != nil {
				return err
			}
			if fp == disk.NullPageID {
				idx = i
				return nil
			}
		}
		return fmt.Errorf("heap: directory has no free entry: %w", nerrors.ErrInvalidArg)
	})
	if err != nil {
		return 0, err
	}
	return idx, nil
}

// SetEntry populates entry i with firstPage and name.
func (d *Directory) SetEntry(i int, firstPage disk.PageID, name string) error {
	return d.buf.WithPage(disk.DirectoryPageID, true, func(p *page.Page) error {
		return d.writeEntry(p, i, firstPage, name)
	})
}

// ClearEntry zeros entry i, making it free for reuse.
func (d *Directory) ClearEntry(i int) error {
	return d.buf.WithPage(disk.DirectoryPageID, true, func(p *page.Page) error {
		return d.writeEntry(p, i, disk.NullPageID, "")
	})
}

// Find linear-scans entries and returns the index and first-data-page-id of
// the first entry whose name matches and whose first-data-page-id > 0.
// Fails RelationNotFound if no entry matches.
func (d *Directory) Find(name string) (index int, firstPage disk.PageID, err error) {
	index = -1
	err = d.buf.WithPage(disk.DirectoryPageID, false, func(p *page.Page) error {
		for i := 0; i < d.maxEntries; i++ {
			fp, entryName, err := d.readEntry(p, i)
			if err != nil {
				return err
			}
			if fp != disk.NullPageID && entryName == name {
				index = i
				firstPage = fp
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	if index < 0 {
		return 0, 0, fmt.Errorf("heap: no relation named %q: %w", name, nerrors.ErrRelationNotFound)
	}
	return index, firstPage, nil
}
