package scoring

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gradery/gradery/internal/domain"
)

// CSV layout errors.
var (
	// ErrBadHeader indicates the answers CSV does not start with the
	// expected columns.
	ErrBadHeader = errors.New("unexpected CSV header")
)

var answerHeader = []string{"student_id", "question_id", "answer_text"}

var scoreHeader = []string{
	"student_id", "question_id", "marks_awarded",
	"max_marks", "confidence_score", "justification",
}

// ReadAnswers parses a students_ocr.csv stream: one row per detected
// crop pair after OCR, in scan order. Empty answer text is a valid row.
func ReadAnswers(r io.Reader) ([]domain.StudentAnswer, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(answerHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range answerHeader {
		if header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q",
				ErrBadHeader, i, header[i], col)
		}
	}

	var answers []domain.StudentAnswer
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return answers, nil
		}
		if err != nil {
			return nil, err
		}
		answers = append(answers, domain.StudentAnswer{
			StudentID:  row[0],
			QuestionID: row[1],
			AnswerText: row[2],
		})
	}
}

// ReadAnswersFile reads a students_ocr.csv file.
func ReadAnswersFile(path string) ([]domain.StudentAnswer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAnswers(f)
}

// WriteRecords writes the final score table, one row per record, in the
// order given.
func WriteRecords(w io.Writer, records []domain.ScoreRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.StudentID,
			r.QuestionID,
			r.Awarded.String(),
			strconv.Itoa(r.MaxMarks),
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			r.Justification,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsFile writes final_scores.csv.
func WriteRecordsFile(path string, records []domain.ScoreRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRecords(f, records)
}
