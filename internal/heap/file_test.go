package heap

import (
	"testing"

	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/stretchr/testify/require"
)

func frame(r int, first byte) []byte {
	b := make([]byte, r)
	b[0] = first
	return b
}

func TestCreateFileRejectsDuplicate(t *testing.T) {
	buf, dir := newTestEnv(t, 128, 64, 16, 2, 4)
	_, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)

	_, err = CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}

func TestOpenFileMissingFails(t *testing.T) {
	buf, dir := newTestEnv(t, 128, 64, 16, 2, 4)
	_, err := OpenFile(buf, dir, "missing", testRecordWidth, nil)
	require.ErrorIs(t, err, nerrors.ErrRelationNotFound)
}

func TestInsertGetIdentity(t *testing.T) {
	buf, dir := newTestEnv(t, 128, 64, 16, 2, 4)
	f, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)

	rid, err := f.Insert(frame(testRecordWidth, 42))
	require.NoError(t, err)

	got, err := f.Get(rid)
	require.NoError(t, err)
	require.Equal(t, byte(42), got[0])
}

func TestDeleteThenGetFails(t *testing.T) {
	buf, dir := newTestEnv(t, 128, 64, 16, 2, 4)
	f, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)

	rid, err := f.Insert(frame(testRecordWidth, 1))
	require.NoError(t, err)
	require.NoError(t, f.Delete(rid))

	_, err = f.Get(rid)
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}

func TestInsertAcrossMultiplePages(t *testing.T) {
	buf, dir := newTestEnv(t, 64, 64, 32, 2, 4)
	f, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)
	cap := f.Capacity()
	require.Greater(t, cap, 0)

	total := cap*2 + 1 // force at least 3 linked pages
	rids := make([]RecordID, 0, total)
	for i := 0; i < total; i++ {
		rid, err := f.Insert(frame(testRecordWidth, byte(i)))
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	pages, err := f.PageIDs()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pages), 3)

	for i, rid := range rids {
		got, err := f.Get(rid)
		require.NoError(t, err)
		require.Equal(t, byte(i), got[0])
	}
}

// TestScenarioTwo mirrors spec.md's concrete scenario 2: insert N records,
// scan yields them in insertion order, delete one, scan skips it, insert a
// new record reuses exactly that RecordID, scan yields N rows again with the
// new payload at the reused slot.
func TestScenarioTwo(t *testing.T) {
	buf, dir := newTestEnv(t, 96, 64, 32, 2, 4)
	f, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)

	const n = 12
	rids := make([]RecordID, n)
	for i := 0; i < n; i++ {
		rid, err := f.Insert(frame(testRecordWidth, byte(i+1)))
		require.NoError(t, err)
		rids[i] = rid
	}

	assertScanOrder := func(want []byte) {
		scan := NewRawScan(f)
		var got []byte
		for {
			_, data, ok, err := scan.GetNext()
			require.NoError(t, err)
			if !ok {
				break
			}
			got = append(got, data[0])
		}
		require.Equal(t, want, got)
	}

	want := make([]byte, n)
	for i := range want {
		want[i] = byte(i + 1)
	}
	assertScanOrder(want)

	deleteIdx := 3
	require.NoError(t, f.Delete(rids[deleteIdx]))
	withoutDeleted := append(append([]byte{}, want[:deleteIdx]...), want[deleteIdx+1:]...)
	assertScanOrder(withoutDeleted)

	newRid, err := f.Insert(frame(testRecordWidth, 99))
	require.NoError(t, err)
	require.Equal(t, rids[deleteIdx], newRid)

	want[deleteIdx] = 99
	assertScanOrder(want)
}

func TestDestroyFreesEntry(t *testing.T) {
	buf, dir := newTestEnv(t, 128, 64, 16, 2, 4)
	f, err := CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)
	_, err = f.Insert(frame(testRecordWidth, 1))
	require.NoError(t, err)

	require.NoError(t, f.Destroy())

	_, err = OpenFile(buf, dir, "t", testRecordWidth, nil)
	require.ErrorIs(t, err, nerrors.ErrRelationNotFound)

	_, err = CreateFile(buf, dir, "t", testRecordWidth, nil)
	require.NoError(t, err)
}
