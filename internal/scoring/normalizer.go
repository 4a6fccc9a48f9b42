// Package scoring turns judge output into score records. It holds the
// response normalizer, which recovers a well-formed score from noisy LLM
// output, and the engine that walks every answer row through lookup,
// prompt, judge, and normalization.
package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ScoreFields is the structured result extracted from judge output. The
// judge's MaxMarks is carried for diagnostics but the engine always
// replaces it with the scheme-computed value.
type ScoreFields struct {
	MarksAwarded  int     `json:"marks_awarded"`
	MaxMarks      int     `json:"max_marks"`
	Confidence    float64 `json:"confidence_score"`
	Justification string  `json:"justification"`
}

// ParseError reports that no usable score object could be extracted. It
// carries the raw output for manual diagnosis; parsing never panics or
// returns anything other than fields or a ParseError.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse judge output: %s", e.Reason)
}

var (
	// fenceRe strips markdown code-fence wrapping.
	fenceRe = regexp.MustCompile("```json\\s*|\\s*```")

	// candidateRe extracts brace-delimited object candidates, non-greedy,
	// across newlines.
	candidateRe = regexp.MustCompile(`(?s)\{.*?\}`)
)

// keyTypos maps known misspelled keys, quoted, to their corrected forms.
// Applied textually before structural parsing. The quoted forms keep a
// typo'd prefix of a correct key from corrupting the correct one.
var keyTypos = map[string]string{
	`"marks_awaired"`:   `"marks_awarded"`,
	`"confidence_scor"`: `"confidence_score"`,
}

// Parse extracts score fields from raw judge output. It strips code
// fences, repairs known key typos, then tries every brace-delimited
// candidate in order and accepts the first one that parses as an object
// containing both a marks_awarded and a justification key.
func Parse(raw string) (*ScoreFields, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
	for wrong, right := range keyTypos {
		cleaned = strings.ReplaceAll(cleaned, wrong, right)
	}

	candidates := candidateRe.FindAllString(cleaned, -1)
	if len(candidates) == 0 {
		return nil, &ParseError{Reason: "no JSON object found", Raw: raw}
	}

	for _, candidate := range candidates {
		fields, ok := tryCandidate(candidate)
		if ok {
			return fields, nil
		}
	}
	return nil, &ParseError{
		Reason: "found JSON-like objects, but none contained the required keys",
		Raw:    raw,
	}
}

// tryCandidate parses one candidate object. It requires the
// marks_awarded and justification keys; max_marks and confidence_score
// default to zero values when absent.
func tryCandidate(candidate string) (*ScoreFields, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	marksRaw, ok := obj["marks_awarded"]
	if !ok {
		return nil, false
	}
	justRaw, ok := obj["justification"]
	if !ok {
		return nil, false
	}

	fields := &ScoreFields{}
	if err := json.Unmarshal(marksRaw, &fields.MarksAwarded); err != nil {
		// Some judges quote the integer.
		var s string
		if err := json.Unmarshal(marksRaw, &s); err != nil {
			return nil, false
		}
		if _, err := fmt.Sscanf(s, "%d", &fields.MarksAwarded); err != nil {
			return nil, false
		}
	}
	if err := json.Unmarshal(justRaw, &fields.Justification); err != nil {
		return nil, false
	}
	if raw, ok := obj["max_marks"]; ok {
		_ = json.Unmarshal(raw, &fields.MaxMarks)
	}
	if raw, ok := obj["confidence_score"]; ok {
		_ = json.Unmarshal(raw, &fields.Confidence)
	}
	return fields, true
}
