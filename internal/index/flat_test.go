package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlat_AddAndSearch(t *testing.T) {
	flat, err := NewFlat(3)
	require.NoError(t, err)

	require.NoError(t, flat.Add(
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
		[]float32{0, 0, 1},
	))
	assert.Equal(t, 3, flat.Len())

	hits, err := flat.Search([]float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].FID)
	assert.Equal(t, 1, hits[1].FID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestFlat_DimensionMismatch(t *testing.T) {
	flat, err := NewFlat(4)
	require.NoError(t, err)

	require.ErrorIs(t, flat.Add([]float32{1, 2}), ErrDimensionMismatch)

	_, err = flat.Search([]float32{1}, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = NewFlat(0)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlat_SearchEdgeCases(t *testing.T) {
	flat, err := NewFlat(2)
	require.NoError(t, err)

	// Empty index and non-positive k return no hits.
	hits, err := flat.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, flat.Add([]float32{1, 0}))
	hits, err = flat.Search([]float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// k larger than the index is clamped.
	hits, err = flat.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestFlat_Row(t *testing.T) {
	flat, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, flat.Add([]float32{0.5, 0.25}))

	row, err := flat.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, row)

	_, err = flat.Row(1)
	require.Error(t, err)
	_, err = flat.Row(-1)
	require.Error(t, err)
}

func TestFlat_PersistenceRoundTrip(t *testing.T) {
	flat, err := NewFlat(3)
	require.NoError(t, err)
	require.NoError(t, flat.Add(
		[]float32{0.1, 0.2, 0.3},
		[]float32{0.4, 0.5, 0.6},
	))

	path := filepath.Join(t.TempDir(), "scheme.index")
	require.NoError(t, flat.WriteFile(path))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, flat.Dim(), loaded.Dim())
	assert.Equal(t, flat.Len(), loaded.Len())

	for fid := 0; fid < flat.Len(); fid++ {
		want, err := flat.Row(fid)
		require.NoError(t, err)
		got, err := loaded.Row(fid)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadFile_Malformed(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.index")
	require.NoError(t, writeBytes(path, []byte("not an index")))
	_, err := ReadFile(path)
	require.ErrorIs(t, err, ErrBadIndexFile)
}

func TestNormalizeL2(t *testing.T) {
	vec := []float32{3, 4}
	NormalizeL2(vec)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	// Zero vectors stay zero instead of becoming NaN.
	zero := []float32{0, 0}
	NormalizeL2(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}
