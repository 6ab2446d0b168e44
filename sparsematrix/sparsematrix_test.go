package sparsematrix_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trafficsim/sparsematrix"
)

func TestNew_BadShape(t *testing.T) {
	_, err := sparsematrix.New[bool](0, 3)
	require.ErrorIs(t, err, sparsematrix.ErrBadShape)

	_, err = sparsematrix.New[bool](3, -1)
	require.ErrorIs(t, err, sparsematrix.ErrBadShape)
}

func TestInsertContainsErase(t *testing.T) {
	m, err := sparsematrix.New[bool](3, 3)
	require.NoError(t, err)

	require.NoError(t, m.Insert(1, 2, true))
	ok, err := m.Contains(1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Contains(0, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Erase(1, 2))
	ok, err = m.Contains(1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOutOfRange(t *testing.T) {
	m, err := sparsematrix.New[bool](2, 2)
	require.NoError(t, err)

	_, err = m.Contains(5, 0)
	assert.True(t, errors.Is(err, sparsematrix.ErrIndexOutOfRange))

	err = m.Insert(0, -1, true)
	assert.True(t, errors.Is(err, sparsematrix.ErrIndexOutOfRange))
}

func TestGetRowKeepID(t *testing.T) {
	m, err := sparsematrix.New[bool](2, 3)
	require.NoError(t, err)
	require.NoError(t, m.Insert(1, 0, true))
	require.NoError(t, m.Insert(1, 2, true))

	withID, err := m.GetRow(1, true)
	require.NoError(t, err)
	want := map[int]bool{3: true, 5: true} // row 1 * cols 3 + col
	if diff := cmp.Diff(want, withID); diff != "" {
		t.Fatalf("GetRow(keepID=true) mismatch (-want +got):\n%s", diff)
	}

	byCol, err := m.GetRow(1, false)
	require.NoError(t, err)
	wantByCol := map[int]bool{0: true, 2: true}
	if diff := cmp.Diff(wantByCol, byCol); diff != "" {
		t.Fatalf("GetRow(keepID=false) mismatch (-want +got):\n%s", diff)
	}
}

func TestGetColKeepID(t *testing.T) {
	m, err := sparsematrix.New[bool](3, 2)
	require.NoError(t, err)
	require.NoError(t, m.Insert(0, 1, true))
	require.NoError(t, m.Insert(2, 1, true))

	withID, err := m.GetCol(1, true)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 5: true}, withID)

	byRow, err := m.GetCol(1, false)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: true, 2: true}, byRow)
}

func TestEmptyRowColumn(t *testing.T) {
	m, err := sparsematrix.New[bool](2, 2)
	require.NoError(t, err)

	empty, err := m.EmptyRow(0)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, m.Insert(0, 0, true))
	empty, err = m.EmptyRow(0)
	require.NoError(t, err)
	assert.False(t, empty)

	empty, err = m.EmptyColumn(1)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestReshapeDropsOutOfRangeEntries(t *testing.T) {
	m, err := sparsematrix.New[int](4, 4)
	require.NoError(t, err)
	require.NoError(t, m.Insert(3, 3, 7)) // linear index 15
	require.NoError(t, m.Insert(0, 1, 9)) // linear index 1

	require.NoError(t, m.Reshape(2, 2)) // limit = 4, drops idx 15, keeps idx 1
	assert.Equal(t, 1, m.Len())

	v, ok, err := m.Get(0, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestReshapeBadShape(t *testing.T) {
	m, err := sparsematrix.New[int](2, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Reshape(0, 5), sparsematrix.ErrBadShape)
}
