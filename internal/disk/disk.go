// Package disk implements NanoDB's disk manager: a single backing file, a
// page-level bitmap allocator living on page 0, and raw page read/write.
// Grounded on the teacher's internal/storage/pager.go (single *os.File,
// offset = pageID * pageSize) and original_source/src/diskmgr.rs (bitmap
// page layout, allocate/deallocate scanning, reserved page 0/1).
package disk

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
)

// PageID names a page in the database file. 0 means "null / none".
type PageID int32

// NullPageID is the sentinel "no page" value.
const NullPageID PageID = 0

// BitmapPageID is the fixed page holding the liveness bitmap.
const BitmapPageID PageID = 0

// DirectoryPageID is the fixed, well-known page holding the heap-file
// directory. Reserved by the manager at file creation, outside the normal
// AllocatePage scan.
const DirectoryPageID PageID = 1

// firstAllocatablePageID is where AllocatePage starts scanning: pages 0 and
// 1 are permanently reserved.
const firstAllocatablePageID = 2

// Manager is NanoDB's disk manager. It is not safe for concurrent use; the
// engine is single-threaded by design.
type Manager struct {
	file     *os.File
	pageSize int
	numPages int
	logger   *slog.Logger
}

// Open opens path read-write, creating it if absent. A freshly created file
// is truncated/extended to pageSize*numPages bytes, and the bitmap is
// initialized with pages 0 (bitmap) and 1 (directory) marked allocated. An
// existing file is reopened as-is; its size must already equal
// pageSize*numPages.
func Open(path string, pageSize, numPages int, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	existed := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		existed = false
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, nerrors.ErrIoError)
	}

	m := &Manager{file: f, pageSize: pageSize, numPages: numPages, logger: logger}

	wantSize := int64(pageSize) * int64(numPages)
	if !existed {
		if err := f.Truncate(wantSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("disk: truncate %s: %w", path, nerrors.ErrIoError)
		}
		bitmap := page.New(pageSize)
		bitmap.Buf[BitmapPageID] = 1
		bitmap.Buf[DirectoryPageID] = 1
		if err := m.writePageRaw(BitmapPageID, bitmap); err != nil {
			f.Close()
			return nil, err
		}
		logger.Debug("disk: initialized new database file", "path", path, "pageSize", pageSize, "numPages", numPages)
	} else {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("disk: stat %s: %w", path, nerrors.ErrIoError)
		}
		if info.Size() != wantSize {
			f.Close()
			return nil, fmt.Errorf("disk: %s has size %d, want %d: %w", path, info.Size(), wantSize, nerrors.ErrInvalidArg)
		}
		logger.Debug("disk: reopened existing database file", "path", path)
	}

	return m, nil
}

// Close syncs the file to stable storage and closes it.
func (m *Manager) Close() error {
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("disk: sync: %w", nerrors.ErrIoError)
	}
	if err := m.file.Close(); err != nil {
		return fmt.Errorf("disk: close: %w", nerrors.ErrIoError)
	}
	return nil
}

// PageSize reports the fixed page width.
func (m *Manager) PageSize() int { return m.pageSize }

// NumPages reports the fixed maximum page count.
func (m *Manager) NumPages() int { return m.numPages }

func (m *Manager) readPageRaw(pid PageID) (*page.Page, error) {
	buf := make([]byte, m.pageSize)
	off := int64(pid) * int64(m.pageSize)
	if _, err := m.file.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("disk: read page %d: %w", pid, nerrors.ErrIoError)
	}
	return page.FromBytes(buf), nil
}

func (m *Manager) writePageRaw(pid PageID, p *page.Page) error {
	off := int64(pid) * int64(m.pageSize)
	if _, err := m.file.WriteAt(p.Buf, off); err != nil {
		return fmt.Errorf("disk: write page %d: %w", pid, nerrors.ErrIoError)
	}
	return nil
}

func (m *Manager) readBitmap() (*page.Page, error) {
	return m.readPageRaw(BitmapPageID)
}

// IsFreePage reports whether pid is currently free according to the bitmap.
func (m *Manager) IsFreePage(pid PageID) (bool, error) {
	if pid < 0 || int(pid) >= m.numPages {
		return false, fmt.Errorf("disk: page id %d out of range: %w", pid, nerrors.ErrInvalidArg)
	}
	bitmap, err := m.readBitmap()
	if err != nil {
		return false, err
	}
	b, err := bitmap.GetByte(int(pid))
	if err != nil {
		return false, err
	}
	return b == 0, nil
}

// AllocatePage scans the bitmap from page 2 upward, returns the first free
// page id, marks it allocated, and rewrites the bitmap. Fails NoFreePage if
// exhausted.
func (m *Manager) AllocatePage() (PageID, error) {
	bitmap, err := m.readBitmap()
	if err != nil {
		return NullPageID, err
	}
	for pid := firstAllocatablePageID; pid < m.numPages; pid++ {
		b, err := bitmap.GetByte(pid)
		if err != nil {
			return NullPageID, err
		}
		if b == 0 {
			if err := bitmap.SetByte(pid, 1); err != nil {
				return NullPageID, err
			}
			if err := m.writePageRaw(BitmapPageID, bitmap); err != nil {
				return NullPageID, err
			}
			m.logger.Debug("disk: allocated page", "pageID", pid)
			return PageID(pid), nil
		}
	}
	return NullPageID, fmt.Errorf("disk: allocate page: %w", nerrors.ErrNoFreePage)
}

// DeallocatePage clears pid's bitmap byte. Idempotent.
func (m *Manager) DeallocatePage(pid PageID) error {
	if pid < 0 || int(pid) >= m.numPages {
		return fmt.Errorf("disk: page id %d out of range: %w", pid, nerrors.ErrInvalidArg)
	}
	bitmap, err := m.readBitmap()
	if err != nil {
		return err
	}
	if err := bitmap.SetByte(int(pid), 0); err != nil {
		return err
	}
	if err := m.writePageRaw(BitmapPageID, bitmap); err != nil {
		return err
	}
	m.logger.Debug("disk: deallocated page", "pageID", pid)
	return nil
}

// ReadPage returns a fresh copy of pid's contents. Fails InvalidArg if the
// bitmap says pid is free.
func (m *Manager) ReadPage(pid PageID) (*page.Page, error) {
	free, err := m.IsFreePage(pid)
	if err != nil {
		return nil, err
	}
	if free {
		return nil, fmt.Errorf("disk: read page %d: page is free: %w", pid, nerrors.ErrInvalidArg)
	}
	return m.readPageRaw(pid)
}

// WritePage writes p to pid's slot. Fails InvalidArg if the bitmap says pid
// is free.
func (m *Manager) WritePage(pid PageID, p *page.Page) error {
	free, err := m.IsFreePage(pid)
	if err != nil {
		return err
	}
	if free {
		return fmt.Errorf("disk: write page %d: page is free: %w", pid, nerrors.ErrInvalidArg)
	}
	return m.writePageRaw(pid, p)
}
