package domain

import (
	"strings"
	"text/template"
)

// promptTemplate is the fixed judge instruction. It restricts the judge to
// the supplied scheme text only and pins the output contract to a single
// JSON object with exactly four keys.
const promptTemplate = `<|SYSTEM|>
You are an AI exam evaluator. Your task is to grade the student's answer based *only* on the provided marking scheme.
- Compare the student's answer *only* against the text in the 'Marking Scheme' section.
- Do not use any external knowledge.
- Your entire response must be a single, valid JSON object.
<|USER|>
**Marking Scheme for Question {{.QuestionID}}:**
---
{{.SchemeText}}
---

**Student's Answer:**
---
{{.AnswerText}}
---

**Instructions:**
Return a single JSON object with these exact keys:
- "marks_awarded": (integer) The total marks awarded based on the scheme.
- "max_marks": (integer) The total possible marks for this question.
- "confidence_score": (float, 0.0 to 1.0) Your confidence in the score.
- "justification": (string) A brief reason for your scoring, referencing the scheme.

Your response must start with { and end with }.`

var promptTmpl = template.Must(template.New("judge").Parse(promptTemplate))

// BuildPrompt renders the judge instruction for one question. The caller
// must supply a non-empty point list; an empty scheme is handled upstream
// as an ungraded row, never as a prompt.
func BuildPrompt(questionID string, points []MarkingPoint, answerText string) string {
	var scheme strings.Builder
	for i, pt := range points {
		if i > 0 {
			scheme.WriteByte('\n')
		}
		scheme.WriteString("- ")
		scheme.WriteString(pt.Text)
	}

	var out strings.Builder
	// The template is a compile-time constant over string fields; rendering
	// cannot fail.
	_ = promptTmpl.Execute(&out, struct {
		QuestionID string
		SchemeText string
		AnswerText string
	}{
		QuestionID: questionID,
		SchemeText: scheme.String(),
		AnswerText: answerText,
	})
	return out.String()
}
