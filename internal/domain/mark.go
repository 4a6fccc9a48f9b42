package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Mark-specific errors.
var (
	// ErrInvalidMark indicates a textual mark value could not be parsed.
	ErrInvalidMark = errors.New("invalid mark value")
)

// Textual forms of the non-numeric mark outcomes. These match the values
// written to the final output table.
const (
	markUnscoredText = "N/A"
	markFailedText   = "Error"
)

// MarkKind discriminates the outcome carried by a Mark.
type MarkKind string

const (
	// MarkScored means the judge produced a numeric award.
	MarkScored MarkKind = "scored"

	// MarkUnscored means no scheme points existed for the question; the row
	// is a defined "ungraded" outcome, not a failure.
	MarkUnscored MarkKind = "unscored"

	// MarkFailed means the judge failed or its output could not be parsed.
	MarkFailed MarkKind = "failed"
)

// Mark is a tagged variant for the marks_awarded field: a numeric award,
// an ungraded outcome, or a failure. It serializes to the same textual
// forms the output table uses ("N/A", "Error", or the integer itself),
// so downstream consumers see no format change.
type Mark struct {
	kind  MarkKind
	value int
}

// Scored returns a Mark carrying a numeric award.
func Scored(value int) Mark { return Mark{kind: MarkScored, value: value} }

// Unscored returns the "no scheme points" outcome.
func Unscored() Mark { return Mark{kind: MarkUnscored} }

// Failed returns the failure outcome.
func Failed() Mark { return Mark{kind: MarkFailed} }

// Kind reports which variant the mark holds. The zero Mark is MarkFailed
// by construction: an uninitialized award must never read as a score.
func (m Mark) Kind() MarkKind {
	if m.kind == "" {
		return MarkFailed
	}
	return m.kind
}

// Value returns the numeric award and whether the mark is scored.
func (m Mark) Value() (int, bool) {
	if m.Kind() != MarkScored {
		return 0, false
	}
	return m.value, true
}

// String renders the mark in its output-table form.
func (m Mark) String() string {
	switch m.Kind() {
	case MarkScored:
		return strconv.Itoa(m.value)
	case MarkUnscored:
		return markUnscoredText
	default:
		return markFailedText
	}
}

// MarshalJSON writes scored marks as JSON numbers and the other outcomes
// as their textual forms.
func (m Mark) MarshalJSON() ([]byte, error) {
	if v, ok := m.Value(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(m.String())
}

// ParseMark reads a mark back from its output-table form.
func ParseMark(s string) (Mark, error) {
	switch s {
	case markUnscoredText:
		return Unscored(), nil
	case markFailedText:
		return Failed(), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Mark{}, fmt.Errorf("%w: %q", ErrInvalidMark, s)
	}
	return Scored(v), nil
}
