// Package buffer implements NanoDB's buffer manager: a bounded pool of
// frames with pin/unpin and dirty tracking, backed by the disk manager.
// Grounded on the teacher's internal/bufferpool/pool.go (Frame{PageID, Page,
// Dirty, Pin}, map-based page table, GetPage/Unpin/FlushAll shape), with the
// teacher's CLOCK eviction policy replaced: this system has no replacement
// policy and returns BufferFull instead of evicting, per spec.
package buffer

import (
	"fmt"
	"log/slog"

	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
)

// Frame is a resident (page_id, page, pin_count, dirty) cell.
type Frame struct {
	PageID disk.PageID
	Page   *page.Page
	Pin    int
	Dirty  bool
}

// Manager is NanoDB's buffer manager. Not safe for concurrent use.
type Manager struct {
	disk     *disk.Manager
	capacity int
	frames   map[disk.PageID]*Frame
	logger   *slog.Logger
}

// New creates a buffer manager of the given capacity over disk manager d.
func New(d *disk.Manager, capacity int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		disk:     d,
		capacity: capacity,
		frames:   make(map[disk.PageID]*Frame, capacity),
		logger:   logger,
	}
}

// Capacity reports the pool's fixed frame capacity.
func (m *Manager) Capacity() int { return m.capacity }

// PageSize reports the fixed page width of the underlying disk manager.
func (m *Manager) PageSize() int { return m.disk.PageSize() }

// Resident reports how many frames are currently occupied.
func (m *Manager) Resident() int { return len(m.frames) }

// PinPage returns the page for pid, reading it from disk on first pin. Fails
// BufferFull if the pool is at capacity and pid is not already resident.
func (m *Manager) PinPage(pid disk.PageID) (*page.Page, error) {
	if f, ok := m.frames[pid]; ok {
		f.Pin++
		m.logger.Debug("buffer: pin hit", "pageID", pid, "pin", f.Pin)
		return f.Page, nil
	}
	if len(m.frames) >= m.capacity {
		return nil, fmt.Errorf("buffer: pin page %d: %w", pid, nerrors.ErrBufferFull)
	}
	p, err := m.disk.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	m.frames[pid] = &Frame{PageID: pid, Page: p, Pin: 1}
	m.logger.Debug("buffer: pin miss, loaded from disk", "pageID", pid)
	return p, nil
}

// UnpinPage decrements pid's pin count. Fails PageNotFound if pid is not
// resident.
func (m *Manager) UnpinPage(pid disk.PageID) error {
	f, ok := m.frames[pid]
	if !ok {
		return fmt.Errorf("buffer: unpin page %d: %w", pid, nerrors.ErrPageNotFound)
	}
	if f.Pin <= 0 {
		return fmt.Errorf("buffer: unpin page %d: pin count underflow: %w", pid, nerrors.ErrInvalidArg)
	}
	f.Pin--
	return nil
}

// MarkDirty flags pid's resident frame as dirty. Fails PageNotFound if pid is
// not resident.
func (m *Manager) MarkDirty(pid disk.PageID) error {
	f, ok := m.frames[pid]
	if !ok {
		return fmt.Errorf("buffer: mark dirty page %d: %w", pid, nerrors.ErrPageNotFound)
	}
	f.Dirty = true
	return nil
}

// WithPage pins pid, runs fn on its page, and unconditionally unpins on every
// exit path. If mutate is true and fn succeeds, the frame is marked dirty.
// This is the scoped-access pattern the design notes call for: pin, use,
// unpin, with guaranteed unpin on error too.
func (m *Manager) WithPage(pid disk.PageID, mutate bool, fn func(p *page.Page) error) error {
	p, err := m.PinPage(pid)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := m.UnpinPage(pid); uerr != nil {
			m.logger.Warn("buffer: unpin failed after WithPage", "pageID", pid, "error", uerr)
		}
	}()
	if err := fn(p); err != nil {
		return err
	}
	if mutate {
		if err := m.MarkDirty(pid); err != nil {
			return err
		}
	}
	return nil
}

// CreatePage allocates a fresh page via the disk manager and pins it. The
// returned page has undefined contents and must be initialized by the
// caller. On BufferFull after a successful allocation, the freshly allocated
// disk page is rolled back (deallocated) to avoid leaking it.
func (m *Manager) CreatePage() (disk.PageID, *page.Page, error) {
	pid, err := m.disk.AllocatePage()
	if err != nil {
		return disk.NullPageID, nil, err
	}
	if len(m.frames) >= m.capacity {
		if derr := m.disk.DeallocatePage(pid); derr != nil {
			m.logger.Warn("buffer: rollback deallocate failed after BufferFull", "pageID", pid, "error", derr)
		}
		return disk.NullPageID, nil, fmt.Errorf("buffer: create page: %w", nerrors.ErrBufferFull)
	}
	p := page.New(m.disk.PageSize())
	m.frames[pid] = &Frame{PageID: pid, Page: p, Pin: 1, Dirty: true}
	m.logger.Debug("buffer: created page", "pageID", pid)
	return pid, p, nil
}

// FlushPage writes pid's page through to disk if dirty, and clears the dirty
// bit. Fails PageNotFound if pid is not resident.
func (m *Manager) FlushPage(pid disk.PageID) error {
	f, ok := m.frames[pid]
	if !ok {
		return fmt.Errorf("buffer: flush page %d: %w", pid, nerrors.ErrPageNotFound)
	}
	if !f.Dirty {
		return nil
	}
	if err := m.disk.WritePage(pid, f.Page); err != nil {
		return err
	}
	f.Dirty = false
	m.logger.Debug("buffer: flushed page", "pageID", pid)
	return nil
}

// FreePage drops pid's frame (if resident) and deallocates it on disk. Fails
// InvalidArg if the frame is resident and still pinned.
func (m *Manager) FreePage(pid disk.PageID) error {
	if f, ok := m.frames[pid]; ok {
		if f.Pin > 0 {
			return fmt.Errorf("buffer: free page %d: still pinned: %w", pid, nerrors.ErrInvalidArg)
		}
		delete(m.frames, pid)
	}
	return m.disk.DeallocatePage(pid)
}

// FlushAll flushes every dirty resident frame.
func (m *Manager) FlushAll() error {
	for pid, f := range m.frames {
		if f.Dirty {
			if err := m.disk.WritePage(pid, f.Page); err != nil {
				return err
			}
			f.Dirty = false
		}
	}
	return nil
}

// Close flushes every dirty frame and closes the underlying disk manager.
func (m *Manager) Close() error {
	if err := m.FlushAll(); err != nil {
		return err
	}
	return m.disk.Close()
}
