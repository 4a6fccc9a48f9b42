package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gradery/gradery/internal/domain"
)

// WritePoints writes marking points as JSONL, one object per line, in
// order.
func WritePoints(path string, points []domain.MarkingPoint) error {
	return writeJSONL(path, len(points), func(i int) any { return points[i] })
}

// ReadPoints loads a scheme_points.jsonl file, preserving order.
func ReadPoints(path string) ([]domain.MarkingPoint, error) {
	var points []domain.MarkingPoint
	err := readJSONL(path, func(line []byte) error {
		var p domain.MarkingPoint
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		points = append(points, p)
		return nil
	})
	return points, err
}

// WriteMeta writes indexed points as JSONL. The line order is the fid
// order; fid n is row n of the embedding matrix.
func WriteMeta(path string, meta []domain.IndexedPoint) error {
	return writeJSONL(path, len(meta), func(i int) any { return meta[i] })
}

// ReadMeta loads a scheme_meta.jsonl file, preserving order.
func ReadMeta(path string) ([]domain.IndexedPoint, error) {
	var meta []domain.IndexedPoint
	err := readJSONL(path, func(line []byte) error {
		var p domain.IndexedPoint
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		meta = append(meta, p)
		return nil
	})
	return meta, err
}

// PointsByQuestion groups metadata records by question id, preserving
// point order within each question. This is the exact-match lookup table
// the scoring engine consults.
func PointsByQuestion(meta []domain.IndexedPoint) map[string][]domain.MarkingPoint {
	byQuestion := make(map[string][]domain.MarkingPoint)
	for _, m := range meta {
		byQuestion[m.QuestionID] = append(byQuestion[m.QuestionID], m.MarkingPoint)
	}
	return byQuestion
}

func writeJSONL(path string, n int, record func(int) any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for i := 0; i < n; i++ {
		line, err := json.Marshal(record(i))
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readJSONL(path string, each func(line []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := each(line); err != nil {
			return fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
