package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Index errors.
var (
	// ErrDimensionMismatch indicates a vector's dimension does not match
	// the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrBadIndexFile indicates a persisted index could not be decoded.
	ErrBadIndexFile = errors.New("malformed index file")
)

// indexMagic identifies a persisted flat index file.
const indexMagic = "GRIX"

const indexVersion uint32 = 1

// Hit is one nearest-neighbour result. FID is the row offset into the
// index, which is also the fid of the metadata record.
type Hit struct {
	FID   int
	Score float32
}

// Flat is a brute-force inner-product index. Vectors are expected to be
// unit-normalized, making inner product equivalent to cosine similarity.
// The row order of added vectors defines the fid space.
type Flat struct {
	dim     int
	vectors []float32 // row-major, len = count*dim
}

// NewFlat creates an empty index with a fixed dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrDimensionMismatch, dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the embedding dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.vectors) / f.dim }

// Add appends vectors in order. The fid of each vector is its final row
// position.
func (f *Flat) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(v), f.dim)
		}
		f.vectors = append(f.vectors, v...)
	}
	return nil
}

// Row returns a copy of the vector at the given fid.
func (f *Flat) Row(fid int) ([]float32, error) {
	if fid < 0 || fid >= f.Len() {
		return nil, fmt.Errorf("fid %d out of range [0,%d)", fid, f.Len())
	}
	out := make([]float32, f.dim)
	copy(out, f.vectors[fid*f.dim:(fid+1)*f.dim])
	return out, nil
}

// Search returns the top-k rows by inner product with the query, highest
// first. Ties keep the lower fid first.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query %d, index %d", ErrDimensionMismatch, len(query), f.dim)
	}
	if k <= 0 || f.Len() == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, f.Len())
	for fid := 0; fid < f.Len(); fid++ {
		row := f.vectors[fid*f.dim : (fid+1)*f.dim]
		var dot float32
		for i, q := range query {
			dot += q * row[i]
		}
		hits = append(hits, Hit{FID: fid, Score: dot})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// WriteFile persists the index: magic, version, dimension, row count,
// then the row-major float32 matrix, all little-endian.
func (f *Flat) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(indexMagic); err != nil {
		return err
	}
	header := []uint32{indexVersion, uint32(f.dim), uint32(f.Len())}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, f.vectors); err != nil {
		return err
	}
	return w.Flush()
}

// ReadFile loads a persisted index.
func ReadFile(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	magic := make([]byte, len(indexMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadIndexFile, err)
	}
	if string(magic) != indexMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadIndexFile, magic)
	}

	var version, dim, count uint32
	for _, p := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadIndexFile, err)
		}
	}
	if version != indexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadIndexFile, version)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrBadIndexFile)
	}

	vectors := make([]float32, int(dim)*int(count))
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadIndexFile, err)
	}
	return &Flat{dim: int(dim), vectors: vectors}, nil
}
