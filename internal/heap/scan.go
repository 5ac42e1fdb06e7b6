package heap

import (
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/page"
)

type scanStatus int

const (
	scanStarting scanStatus = iota
	scanScanning
	scanFinished
)

// RawScan is the raw-bytes record scan iterator over a heap file: within a
// page, increasing slot index skipping free slots; across pages, the
// next_page_id chain. Grounded on
// original_source/src/filemgr/raw_file_scan.rs's Starting/Scanning/Finished
// state machine.
type RawScan struct {
	file       *File
	status     scanStatus
	current    RecordID
	restrictTo disk.PageID // 0 = unrestricted; used by FileScanOnPage
}

// NewRawScan starts a fresh scan over file from its head page.
func NewRawScan(file *File) *RawScan {
	return &RawScan{file: file, status: scanStarting}
}

// NewFileScanOnPage starts a scan restricted to pid: it begins at pid
// itself and yields only the live slots on that page, never following the
// next_page_id link.
func NewFileScanOnPage(file *File, pid disk.PageID) *RawScan {
	return &RawScan{file: file, status: scanStarting, restrictTo: pid}
}

// PeekNextRID returns the RecordID GetNext would yield, without consuming
// it.
func (s *RawScan) PeekNextRID() (RecordID, bool, error) {
	switch s.status {
	case scanFinished:
		return RecordID{}, false, nil
	case scanStarting:
		return s.initRID()
	default:
		return s.advance(s.current)
	}
}

// GetNext returns the next (RecordID, frame) pair in scan order, or ok=false
// when exhausted.
func (s *RawScan) GetNext() (RecordID, []byte, bool, error) {
	var (
		rid RecordID
		ok  bool
		err error
	)
	switch s.status {
	case scanFinished:
		return RecordID{}, nil, false, nil
	case scanStarting:
		rid, ok, err = s.initRID()
	default:
		rid, ok, err = s.advance(s.current)
	}
	if err != nil {
		return RecordID{}, nil, false, err
	}
	if !ok {
		s.status = scanFinished
		return RecordID{}, nil, false, nil
	}
	s.status = scanScanning
	s.current = rid
	data, err := s.file.Get(rid)
	if err != nil {
		return RecordID{}, nil, false, err
	}
	return rid, data, true, nil
}

func (s *RawScan) initRID() (RecordID, bool, error) {
	start := s.file.HeadPageID()
	if s.restrictTo != disk.NullPageID {
		start = s.restrictTo
	}
	return s.next(start, -1)
}

func (s *RawScan) advance(rid RecordID) (RecordID, bool, error) {
	return s.next(rid.PageID, rid.SlotNo)
}

// next walks forward from (pageID, afterSlot): the next live slot on
// pageID after afterSlot, else the next linked page (unless restricted to a
// single page), recursively.
func (s *RawScan) next(pageID disk.PageID, afterSlot int) (RecordID, bool, error) {
	type result struct {
		rid   RecordID
		found bool
		next  disk.PageID
	}
	var r result
	err := s.file.buf.WithPage(pageID, false, func(p *page.Page) error {
		n, err := NumSlots(p)
		if err != nil {
			return err
		}
		for i := afterSlot + 1; i < n; i++ {
			free, err := IsFreeSlot(p, i)
			if err != nil {
				return err
			}
			if !free {
				r = result{rid: RecordID{PageID: pageID, SlotNo: i}, found: true}
				return nil
			}
		}
		next, err := NextPageID(p)
		if err != nil {
			return err
		}
		r.next = next
		return nil
	})
	if err != nil {
		return RecordID{}, false, err
	}
	if r.found {
		return r.rid, true, nil
	}
	if s.restrictTo != disk.NullPageID {
		return RecordID{}, false, nil
	}
	if r.next == disk.NullPageID {
		return RecordID{}, false, nil
	}
	return s.next(r.next, -1)
}
