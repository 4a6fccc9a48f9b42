package index

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gradery/gradery/internal/domain"
)

// Artifact file names within a scheme artifacts directory.
const (
	PointsFile = "scheme_points.jsonl"
	MetaFile   = "scheme_meta.jsonl"
	IndexFile  = "scheme.index"
	MatrixFile = "scheme_embeddings.f32"
)

// Artifacts addresses the persisted files of one ingested scheme.
type Artifacts struct {
	Dir string
}

func (a Artifacts) PointsPath() string { return filepath.Join(a.Dir, PointsFile) }
func (a Artifacts) MetaPath() string   { return filepath.Join(a.Dir, MetaFile) }
func (a Artifacts) IndexPath() string  { return filepath.Join(a.Dir, IndexFile) }
func (a Artifacts) MatrixPath() string { return filepath.Join(a.Dir, MatrixFile) }

// Build embeds every point, assembles the flat index, and persists the
// full artifact set: points JSONL, fid-ordered metadata JSONL, the index,
// and the raw embedding matrix. Fid n of the metadata is row n of the
// matrix and of the index.
//
// An empty point list is rejected: it would otherwise persist a
// zero-dimension index.
func Build(ctx context.Context, emb Embedder, points []domain.MarkingPoint, dir string) (*Flat, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: cannot build an index over an empty scheme", domain.ErrNoPoints)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}

	texts := make([]string, len(points))
	for i, p := range points {
		texts[i] = p.Text
	}
	vectors, err := emb.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed scheme points: %w", err)
	}
	for _, v := range vectors {
		NormalizeL2(v)
	}

	flat, err := NewFlat(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := flat.Add(vectors...); err != nil {
		return nil, err
	}

	meta := make([]domain.IndexedPoint, len(points))
	for i, p := range points {
		meta[i] = domain.IndexedPoint{FID: i, MarkingPoint: p}
	}

	a := Artifacts{Dir: dir}
	if err := WritePoints(a.PointsPath(), points); err != nil {
		return nil, fmt.Errorf("write points: %w", err)
	}
	if err := WriteMeta(a.MetaPath(), meta); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}
	if err := flat.WriteFile(a.IndexPath()); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	if err := writeMatrix(a.MatrixPath(), vectors); err != nil {
		return nil, fmt.Errorf("write embedding matrix: %w", err)
	}
	return flat, nil
}

// Load reads back the index and its fid-ordered metadata from an
// artifacts directory.
func Load(dir string) (*Flat, []domain.IndexedPoint, error) {
	a := Artifacts{Dir: dir}
	flat, err := ReadFile(a.IndexPath())
	if err != nil {
		return nil, nil, fmt.Errorf("read index: %w", err)
	}
	meta, err := ReadMeta(a.MetaPath())
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata: %w", err)
	}
	if flat.Len() != len(meta) {
		return nil, nil, fmt.Errorf("index has %d rows but metadata has %d records",
			flat.Len(), len(meta))
	}
	return flat, meta, nil
}

// writeMatrix dumps the raw row-major float32 matrix, little-endian,
// without a header. Dimension and row count are recoverable from the
// index file.
func writeMatrix(path string, vectors [][]float32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, v := range vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return w.Flush()
}
