// Package scheme turns a raw marking-scheme document into addressable
// marking points. Segmentation is heuristic by nature, so the entry point
// is a Strategy interface: the default implementation splits on regex
// question boundaries and roman-numeral bullets, and a stricter
// structured-markup source can bypass it entirely.
package scheme

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gradery/gradery/internal/domain"
)

// Segmentation errors. A scheme that yields no questions at all is a
// run-level ingestion failure, not an empty result.
var (
	// ErrNoQuestions indicates the document contains no recognizable
	// question boundaries.
	ErrNoQuestions = errors.New("no questions found in scheme document")
)

// Strategy extracts marking points from a full scheme document.
type Strategy interface {
	Segment(fullText string) ([]domain.MarkingPoint, error)
}

var (
	// questionRe marks a question boundary: a 1-3 digit run at the start
	// of a line. The digits become the question id.
	questionRe = regexp.MustCompile(`(?m)^\s*(\d{1,3})\b`)

	// bulletRe splits a question body on lowercase roman-numeral bullets
	// in parentheses, e.g. "(i)", "(ii)". Case-insensitive.
	bulletRe = regexp.MustCompile(`(?i)\(\s*[ivxlcdm]+\s*\)`)

	// allocRe matches a mark allocation like "3x1=3" with flexible
	// whitespace around the operator.
	allocRe = regexp.MustCompile(`(\d+)\s*[xX]\s*(\d+)\s*=\s*(\d+)`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Question is one question block: the boundary digits and everything up to
// the next boundary.
type Question struct {
	ID   string
	Body string
}

// ExtractQuestions splits the document on question boundary markers.
// Leading text before the first boundary is discarded.
func ExtractQuestions(fullText string) []Question {
	matches := questionRe.FindAllStringSubmatchIndex(fullText, -1)
	questions := make([]Question, 0, len(matches))
	for i, m := range matches {
		id := fullText[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(fullText)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		questions = append(questions, Question{
			ID:   strings.TrimSpace(id),
			Body: strings.TrimSpace(fullText[bodyStart:bodyEnd]),
		})
	}
	return questions
}

// SplitPoints splits a question body on roman-numeral bullet markers,
// discarding empty fragments and trimming the rest. Text before the first
// bullet is the question stem, not a point. A body with zero bullets
// yields zero points: the whole body is skipped, not treated as one point.
func SplitPoints(body string) []string {
	markers := bulletRe.FindAllStringIndex(body, -1)
	if len(markers) == 0 {
		return nil
	}
	points := make([]string, 0, len(markers))
	for i, m := range markers {
		end := len(body)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		if f := strings.TrimSpace(body[m[1]:end]); f != "" {
			points = append(points, f)
		}
	}
	return points
}

// MarkAllocation is a detected "parts x per_part = total" pattern.
// Total is informational only; PerPart is what each point is worth. No
// reconciliation of PerPart*parts against Total is attempted.
type MarkAllocation struct {
	Total   int
	Parts   int
	PerPart int
}

// DetectMarkAllocation searches the body for an "A x B = C" pattern and
// returns (C, A, B). The second return is false when no pattern exists.
func DetectMarkAllocation(body string) (MarkAllocation, bool) {
	m := allocRe.FindStringSubmatch(body)
	if m == nil {
		return MarkAllocation{}, false
	}
	// Submatches are all-digit by construction; conversion cannot fail.
	return MarkAllocation{
		Total:   mustAtoi(m[3]),
		Parts:   mustAtoi(m[1]),
		PerPart: mustAtoi(m[2]),
	}, true
}

// RegexSegmenter is the default Strategy: regex question boundaries,
// roman-numeral bullet points, and heuristic mark-allocation detection.
type RegexSegmenter struct{}

// NewRegexSegmenter returns the default segmentation strategy.
func NewRegexSegmenter() *RegexSegmenter { return &RegexSegmenter{} }

// Segment implements Strategy. Point text is NFKC-normalized with internal
// whitespace runs collapsed to a single space.
func (s *RegexSegmenter) Segment(fullText string) ([]domain.MarkingPoint, error) {
	questions := ExtractQuestions(fullText)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	var points []domain.MarkingPoint
	for _, q := range questions {
		perPoint := 1
		if alloc, ok := DetectMarkAllocation(q.Body); ok && alloc.PerPart > 0 {
			perPoint = alloc.PerPart
		}
		for idx, text := range SplitPoints(q.Body) {
			points = append(points, domain.MarkingPoint{
				QuestionID: q.ID,
				PointIndex: idx + 1,
				Text:       normalizeText(text),
				Marks:      perPoint,
			})
		}
	}

	if err := domain.ValidatePoints(points); err != nil {
		return nil, err
	}
	return points, nil
}

// normalizeText applies NFKC normalization and collapses whitespace runs.
func normalizeText(text string) string {
	normed := norm.NFKC.String(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(normed, " "))
}

func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
