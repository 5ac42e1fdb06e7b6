package page

import (
	"testing"

	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntRoundTrip(t *testing.T) {
	p := New(64)
	require.NoError(t, p.SetInt32(6, 9))
	v, err := p.GetInt32(6)
	require.NoError(t, err)
	assert.Equal(t, int32(9), v)
}

func TestIntNegativeRoundTrip(t *testing.T) {
	p := New(64)
	require.NoError(t, p.SetInt32(0, -12345))
	v, err := p.GetInt32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(-12345), v)
}

func TestByteRoundTrip(t *testing.T) {
	p := New(16)
	require.NoError(t, p.SetByte(3, 0xAB))
	v, err := p.GetByte(3)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), v)
}

func TestVarcharRoundTrip(t *testing.T) {
	p := New(64)
	require.NoError(t, p.SetVarchar(10, 8, []byte("hello")))
	v, err := p.GetVarchar(10, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\x00\x00\x00"), v)
}

func TestOutOfBoundsFails(t *testing.T) {
	p := New(16)
	t.Run("int32 past end", func(t *testing.T) {
		_, err := p.GetInt32(14)
		assert.ErrorIs(t, err, nerrors.ErrInvalidArg)
	})
	t.Run("negative offset", func(t *testing.T) {
		_, err := p.GetInt32(-1)
		assert.ErrorIs(t, err, nerrors.ErrInvalidArg)
	})
	t.Run("varchar past end", func(t *testing.T) {
		_, err := p.GetVarchar(10, 10)
		assert.ErrorIs(t, err, nerrors.ErrInvalidArg)
	})
	t.Run("varchar write too long", func(t *testing.T) {
		err := p.SetVarchar(0, 4, []byte("toolong"))
		assert.ErrorIs(t, err, nerrors.ErrInvalidArg)
	})
}

func TestClone(t *testing.T) {
	p := New(8)
	require.NoError(t, p.SetByte(0, 1))
	clone := p.Clone()
	require.NoError(t, clone.SetByte(0, 2))
	orig, _ := p.GetByte(0)
	cloned, _ := clone.GetByte(0)
	assert.Equal(t, byte(1), orig)
	assert.Equal(t, byte(2), cloned)
}
