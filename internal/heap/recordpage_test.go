package heap

import (
	"testing"

	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/nanodb/nanodb/internal/page"
	"github.com/stretchr/testify/require"
)

const testRecordWidth = 20

func TestRecordPageAddAndGetSlot(t *testing.T) {
	p := page.New(128)
	require.NoError(t, InitRecordPage(p, disk.DirectoryPageID))

	data := make([]byte, testRecordWidth)
	data[0] = 1
	slot, err := AddSlot(p, testRecordWidth, data)
	require.NoError(t, err)
	require.Equal(t, 0, slot)

	got, err := GetSlot(p, slot, testRecordWidth)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestRecordPageCapacityEnforced(t *testing.T) {
	p := page.New(64)
	require.NoError(t, InitRecordPage(p, disk.DirectoryPageID))
	cap := RecordPageCapacity(64, testRecordWidth)
	require.Greater(t, cap, 0)

	data := make([]byte, testRecordWidth)
	for i := 0; i < cap; i++ {
		_, err := AddSlot(p, testRecordWidth, data)
		require.NoError(t, err)
	}
	_, err := AddSlot(p, testRecordWidth, data)
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}

func TestRecordPageDeleteThenReadFails(t *testing.T) {
	p := page.New(128)
	require.NoError(t, InitRecordPage(p, disk.DirectoryPageID))
	data := make([]byte, testRecordWidth)
	slot, err := AddSlot(p, testRecordWidth, data)
	require.NoError(t, err)

	require.NoError(t, SetSlotBit(p, slot, false))
	_, err = GetSlot(p, slot, testRecordWidth)
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}

func TestRecordPageSwapSlot(t *testing.T) {
	p := page.New(128)
	require.NoError(t, InitRecordPage(p, disk.DirectoryPageID))
	a := make([]byte, testRecordWidth)
	a[0] = 'A'
	b := make([]byte, testRecordWidth)
	b[0] = 'B'
	_, err := AddSlot(p, testRecordWidth, a)
	require.NoError(t, err)
	_, err = AddSlot(p, testRecordWidth, b)
	require.NoError(t, err)

	require.NoError(t, SwapSlot(p, 0, 1, testRecordWidth))
	got0, _ := GetSlot(p, 0, testRecordWidth)
	got1, _ := GetSlot(p, 1, testRecordWidth)
	require.Equal(t, byte('B'), got0[0])
	require.Equal(t, byte('A'), got1[0])
}

func TestRecordPageFreeAll(t *testing.T) {
	p := page.New(128)
	require.NoError(t, InitRecordPage(p, disk.DirectoryPageID))
	data := make([]byte, testRecordWidth)
	_, err := AddSlot(p, testRecordWidth, data)
	require.NoError(t, err)

	require.NoError(t, FreeAll(p, testRecordWidth))
	n, err := NumSlots(p)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
