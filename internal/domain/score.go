package domain

import (
	"errors"
	"fmt"
)

// Score-specific errors.
var (
	// ErrInvalidRecord indicates a score record failed validation.
	ErrInvalidRecord = errors.New("invalid score record")
)

// ScoreRecord is the final output row for one (student, question) pair.
// Records are created once by the scoring engine and never mutated; the
// output table preserves input answer order.
type ScoreRecord struct {
	StudentID  string `json:"student_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`

	// Awarded carries the outcome: a numeric award, "N/A" when the scheme
	// has no points for the question, or "Error" on judge/parse failure.
	Awarded Mark `json:"marks_awarded"`

	// MaxMarks is the sum of the scheme points' mark values for the
	// question, computed before the judge is consulted. The judge's own
	// notion of the maximum never overrides it.
	MaxMarks int `json:"max_marks" validate:"min=0"`

	// Confidence is the judge's self-reported confidence in [0, 1].
	// Failure and ungraded rows carry 0.
	Confidence float64 `json:"confidence_score" validate:"min=0,max=1"`

	// Justification is the judge's reasoning, or a diagnostic message on
	// failure rows (including the capped raw output on parse failures).
	Justification string `json:"justification"`
}

// Validate checks the record against its structural constraints.
func (r *ScoreRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// ConfidenceBand buckets a confidence value for run summaries.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"   // confidence >= 0.85
	BandMedium ConfidenceBand = "medium" // confidence >= 0.60
	BandLow    ConfidenceBand = "low"    // everything below
)

// Band returns the confidence band for the record.
func (r *ScoreRecord) Band() ConfidenceBand {
	switch {
	case r.Confidence >= 0.85:
		return BandHigh
	case r.Confidence >= 0.60:
		return BandMedium
	default:
		return BandLow
	}
}
