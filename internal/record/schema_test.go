package record

import (
	"testing"

	"github.com/nanodb/nanodb/internal/nerrors"
	"github.com/stretchr/testify/require"
)

func studentSchema() *Schema {
	return NewSchema([]Field{
		{Name: "id", Type: Int},
		{Name: "name", Type: Varchar, Width: 10},
		{Name: "score", Type: Int},
	})
}

func TestSchemaOffsets(t *testing.T) {
	s := studentSchema()
	require.Equal(t, 3, s.Len())
	require.Equal(t, 4+10+4, s.Size())

	id, err := s.Field(0)
	require.NoError(t, err)
	require.Equal(t, 0, id.Offset)

	name, err := s.Field(1)
	require.NoError(t, err)
	require.Equal(t, 4, name.Offset)

	score, err := s.Field(2)
	require.NoError(t, err)
	require.Equal(t, 14, score.Offset)
}

func TestSchemaIndexOf(t *testing.T) {
	s := studentSchema()
	idx, err := s.IndexOf("score")
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	_, err = s.IndexOf("nope")
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}

func TestSchemaProjection(t *testing.T) {
	s := studentSchema()
	proj, err := s.Projection([]int{2, 0})
	require.NoError(t, err)
	require.Equal(t, 2, proj.Len())
	f0, _ := proj.Field(0)
	f1, _ := proj.Field(1)
	require.Equal(t, "score", f0.Name)
	require.Equal(t, 0, f0.Offset)
	require.Equal(t, "id", f1.Name)
	require.Equal(t, 4, f1.Offset)

	_, err = s.Projection([]int{5})
	require.ErrorIs(t, err, nerrors.ErrInvalidArg)
}
