package buffer

import (
	"path/filepath"
	"testing"

	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, capacity int) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nano.db")
	d, err := disk.Open(path, 64, 20, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return New(d, capacity, nil)
}

func TestPinUnpinBalance(t *testing.T) {
	m := newTestManager(t, 4)
	pid, _, err := m.CreatePage()
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(pid))

	_, err = m.PinPage(pid)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(pid))
}

func TestUnpinNonResidentFails(t *testing.T) {
	m := newTestManager(t, 4)
	err := m.UnpinPage(disk.PageID(7))
	require.ErrorIs(t, err, nerrors.ErrPageNotFound)
}

func TestBufferFullDistinctness(t *testing.T) {
	m := newTestManager(t, 2)

	p1, _, err := m.CreatePage()
	require.NoError(t, err)
	p2, _, err := m.CreatePage()
	require.NoError(t, err)

	_, _, err = m.CreatePage()
	require.ErrorIs(t, err, nerrors.ErrBufferFull)

	require.NoError(t, m.UnpinPage(p1))
	p3, _, err := m.CreatePage()
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(p2))
	require.NoError(t, m.UnpinPage(p3))
}

func TestDirtyFlushRoundTrip(t *testing.T) {
	m := newTestManager(t, 4)
	pid, p, err := m.CreatePage()
	require.NoError(t, err)
	require.NoError(t, p.SetInt32(0, 42))
	require.NoError(t, m.MarkDirty(pid))
	require.NoError(t, m.FlushPage(pid))
	require.NoError(t, m.UnpinPage(pid))

	onDisk, err := m.disk.ReadPage(pid)
	require.NoError(t, err)
	dv, err := onDisk.GetInt32(0)
	require.NoError(t, err)
	require.EqualValues(t, 42, dv)

	reread, err := m.PinPage(pid)
	require.NoError(t, err)
	v, err := reread.GetInt32(0)
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
	require.NoError(t, m.UnpinPage(pid))
}

func TestFreePageRequiresUnpinned(t *testing.T) {
	m := newTestManager(t, 4)
	pid, _, err := m.CreatePage()
	require.NoError(t, err)

	err = m.FreePage(pid)
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)

	require.NoError(t, m.UnpinPage(pid))
	require.NoError(t, m.FreePage(pid))
}

func TestWithPageUnpinsOnError(t *testing.T) {
	m := newTestManager(t, 1)
	pid, _, err := m.CreatePage()
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(pid))

	sentinel := nerrors.ErrInvalidArg
	err = m.WithPage(pid, false, func(p *page.Page) error { return sentinel })
	require.ErrorIs(t, err, sentinel)

	// pin count must be back to zero.
	require.Equal(t, 0, m.frames[pid].Pin)

	// the page is still resident, so pinning it again is a hit and does not
	// fail BufferFull even though capacity is 1.
	_, err = m.PinPage(pid)
	require.NoError(t, err)
}
