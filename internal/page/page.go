// Package page implements the fixed-size byte buffer that backs every
// durable structure in NanoDB: bitmap page, directory page, record pages.
// Accessors are little-endian symmetric (read and write) and bounds-checked.
package page

import (
	"encoding/binary"
	"fmt"

	"github.com/nanodb/nanodb/internal/nerrors"
)

// Page is a fixed-size byte buffer. Its size is fixed for the lifetime of a
// database file (chosen once at build/config time) but is not a global
// constant, so tests can exercise multiple sizes side by side.
type Page struct {
	Buf []byte
}

// New allocates a zero-filled page of the given size.
func New(size int) *Page {
	return &Page{Buf: make([]byte, size)}
}

// FromBytes wraps an existing byte slice as a page without copying. The
// caller must not reuse buf afterwards.
func FromBytes(buf []byte) *Page {
	return &Page{Buf: buf}
}

// Size reports the page's fixed byte width.
func (p *Page) Size() int {
	return len(p.Buf)
}

func (p *Page) checkBounds(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(p.Buf) {
		return fmt.Errorf("page: offset %d width %d exceeds page size %d: %w",
			offset, width, len(p.Buf), nerrors.ErrInvalidArg)
	}
	return nil
}

// GetInt32 reads a little-endian 32-bit two's-complement integer.
func (p *Page) GetInt32(offset int) (int32, error) {
	if err := p.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(p.Buf[offset : offset+4])), nil
}

// SetInt32 writes a little-endian 32-bit two's-complement integer.
func (p *Page) SetInt32(offset int, v int32) error {
	if err := p.checkBounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.Buf[offset:offset+4], uint32(v))
	return nil
}

// GetByte reads a single byte.
func (p *Page) GetByte(offset int) (byte, error) {
	if err := p.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return p.Buf[offset], nil
}

// SetByte writes a single byte.
func (p *Page) SetByte(offset int, v byte) error {
	if err := p.checkBounds(offset, 1); err != nil {
		return err
	}
	p.Buf[offset] = v
	return nil
}

// GetVarchar returns the raw n-byte window starting at offset. Interpretation
// (NUL-termination) is left to the caller, per the tuple codec.
func (p *Page) GetVarchar(offset, n int) ([]byte, error) {
	if err := p.checkBounds(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p.Buf[offset:offset+n])
	return out, nil
}

// SetVarchar copies raw bytes into the n-byte window starting at offset. No
// truncation and no length prefix; the caller is responsible for leaving
// room for a NUL terminator if the tuple codec requires one.
func (p *Page) SetVarchar(offset, n int, data []byte) error {
	if err := p.checkBounds(offset, n); err != nil {
		return err
	}
	if len(data) > n {
		return fmt.Errorf("page: varchar write of %d bytes exceeds field width %d: %w",
			len(data), n, nerrors.ErrInvalidArg)
	}
	dst := p.Buf[offset : offset+n]
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, data)
	return nil
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	out := make([]byte, len(p.Buf))
	copy(out, p.Buf)
	return &Page{Buf: out}
}
