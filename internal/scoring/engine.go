package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gradery/gradery/internal/domain"
	"github.com/gradery/gradery/internal/judge"
)

// rawOutputCap bounds how much raw judge output a parse-failure
// justification may embed, for storage hygiene.
const rawOutputCap = 2000

// JudgeClient is the capability the engine needs from the judge layer.
// Satisfied by *judge.Client; tests substitute stubs.
type JudgeClient interface {
	Submit(ctx context.Context, prompt string) (*judge.Result, error)
}

// Engine scores student answers one row at a time, in input order. Rows
// are independent: each scoring is a pure transformation of (points,
// answer text) against a fixed judge endpoint, so there is no shared
// mutable state and no retry of a row once it has been decided.
type Engine struct {
	points map[string][]domain.MarkingPoint
	judge  JudgeClient
	logger *slog.Logger
}

// NewEngine builds an engine over the exact-match lookup table of scheme
// points. The table is read-only for the engine's lifetime.
func NewEngine(points map[string][]domain.MarkingPoint, client JudgeClient, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{points: points, judge: client, logger: logger}
}

// ScoreAnswer produces the score record for one answer row.
//
// A returned error is run-fatal (judge backend unavailable); every
// row-scoped failure is encoded in the record itself, never dropped.
func (e *Engine) ScoreAnswer(ctx context.Context, ans domain.StudentAnswer) (domain.ScoreRecord, error) {
	points := e.points[ans.QuestionID]
	maxMarks := 0
	for _, p := range points {
		maxMarks += p.Marks
	}

	record := domain.ScoreRecord{
		StudentID:  ans.StudentID,
		QuestionID: ans.QuestionID,
		MaxMarks:   maxMarks,
	}

	if len(points) == 0 {
		record.Awarded = domain.Unscored()
		record.Justification = "No marking scheme points found for this question ID."
		return record, nil
	}

	prompt := domain.BuildPrompt(ans.QuestionID, points, ans.AnswerText)
	res, err := e.judge.Submit(ctx, prompt)
	if err != nil {
		if errors.Is(err, judge.ErrBackendUnavailable) {
			return domain.ScoreRecord{}, err
		}
		record.Awarded = domain.Failed()
		record.Justification = failureJustification(res, err)
		return record, nil
	}

	fields, perr := Parse(res.Output)
	if perr != nil {
		record.Awarded = domain.Failed()
		record.Justification = fmt.Sprintf("Failed to parse judge output: %s",
			truncate(res.Output, rawOutputCap))
		return record, nil
	}

	// MaxMarks stays as computed from the scheme; the judge's own total
	// never overrides the ground truth.
	record.Awarded = domain.Scored(fields.MarksAwarded)
	record.Confidence = fields.Confidence
	record.Justification = fields.Justification
	return record, nil
}

// ScoreAll scores every answer sequentially, preserving input order. On a
// run-fatal error the remaining rows are abandoned and the error is
// returned with whatever was scored so far.
func (e *Engine) ScoreAll(ctx context.Context, answers []domain.StudentAnswer) ([]domain.ScoreRecord, error) {
	records := make([]domain.ScoreRecord, 0, len(answers))
	bands := map[domain.ConfidenceBand]int{}

	for i, ans := range answers {
		record, err := e.ScoreAnswer(ctx, ans)
		if err != nil {
			return records, fmt.Errorf("row %d (student %s, question %s): %w",
				i, ans.StudentID, ans.QuestionID, err)
		}
		records = append(records, record)
		bands[record.Band()]++
		e.logger.Info("scored answer",
			"student", ans.StudentID,
			"question", ans.QuestionID,
			"marks", record.Awarded.String(),
			"max_marks", record.MaxMarks)
	}

	e.logger.Info("scoring run complete",
		"rows", len(records),
		"confidence_high", bands[domain.BandHigh],
		"confidence_medium", bands[domain.BandMedium],
		"confidence_low", bands[domain.BandLow])
	return records, nil
}

func failureJustification(res *judge.Result, err error) string {
	if errors.Is(err, judge.ErrAllBackendsExhausted) {
		return fmt.Sprintf("All judge backends failed: %v", err)
	}
	backend := "unknown"
	if res != nil && res.Backend != "" {
		backend = res.Backend
	}
	return fmt.Sprintf("Judge backend (%s) did not return a response: %v", backend, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
