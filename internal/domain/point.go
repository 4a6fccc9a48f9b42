// Package domain defines the core types of the grading pipeline: marking
// points extracted from a scheme document, student answers produced by OCR,
// and the score records emitted for every (student, question) pair.
//
// All types here are plain data with validation; they carry no behavior that
// touches the filesystem, the embedding model, or a judge backend. The
// segmenter owns MarkingPoint creation, the index owns IndexedPoint
// persistence, and the scoring engine is the sole writer of ScoreRecords.
package domain

import (
	"errors"
	"fmt"
)

// Domain-level errors shared across packages.
var (
	// ErrInvalidPoint indicates a marking point failed validation.
	ErrInvalidPoint = errors.New("invalid marking point")

	// ErrDuplicatePoint indicates two points share a (question_id, point_index) pair.
	ErrDuplicatePoint = errors.New("duplicate marking point")

	// ErrNoPoints indicates an operation requires a non-empty point list.
	ErrNoPoints = errors.New("no marking points")
)

// MarkingPoint is a single gradable criterion extracted from the marking
// scheme. Points are created once during scheme ingestion and are immutable
// afterward; scoring only reads them.
type MarkingPoint struct {
	// QuestionID is the document-assigned question identifier. It is kept
	// as a string: schemes are free to number questions however they like.
	QuestionID string `json:"question_id" validate:"required"`

	// PointIndex is the 1-based position of the point within its question.
	PointIndex int `json:"point_index" validate:"required,min=1"`

	// Text is the criterion text with whitespace runs collapsed and trimmed.
	Text string `json:"text" validate:"required"`

	// Marks is the value attributable to this point. Defaults to 1 when the
	// scheme body carries no detectable mark allocation.
	Marks int `json:"marks" validate:"required,min=1"`
}

// Validate checks the point against its structural constraints.
func (p *MarkingPoint) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, err)
	}
	return nil
}

// ValidatePoints validates every point and enforces uniqueness of
// (question_id, point_index) pairs across the whole scheme.
func ValidatePoints(points []MarkingPoint) error {
	type key struct {
		qid string
		idx int
	}
	seen := make(map[key]struct{}, len(points))
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		k := key{points[i].QuestionID, points[i].PointIndex}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: question %s point %d",
				ErrDuplicatePoint, k.qid, k.idx)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// IndexedPoint is a MarkingPoint bound to a row of the embedding matrix.
// FID is exactly the 0-based row offset into the persisted index; reordering
// the point list without rebuilding the index invalidates every FID.
type IndexedPoint struct {
	FID int `json:"fid"`
	MarkingPoint
}

// StudentAnswer is one OCR-extracted answer row. AnswerText may be empty:
// a blank crop is still a scorable row, not an error.
type StudentAnswer struct {
	StudentID  string `json:"student_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text"`
}

// Validate checks the answer row's structural constraints.
func (a *StudentAnswer) Validate() error { return validate.Struct(a) }
