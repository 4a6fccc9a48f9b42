package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	points := []MarkingPoint{
		{QuestionID: "7", PointIndex: 1, Text: "movement of water molecules", Marks: 2},
		{QuestionID: "7", PointIndex: 2, Text: "across a semi-permeable membrane", Marks: 2},
	}

	prompt := BuildPrompt("7", points, "water moves across the membrane")

	// Grounding instruction and question framing.
	assert.Contains(t, prompt, "only* on the provided marking scheme")
	assert.Contains(t, prompt, "Marking Scheme for Question 7")

	// Every point appears as a bullet.
	assert.Contains(t, prompt, "- movement of water molecules")
	assert.Contains(t, prompt, "- across a semi-permeable membrane")

	// The student's answer is embedded verbatim.
	assert.Contains(t, prompt, "water moves across the membrane")

	// Output contract: exactly the four keys, brace-delimited response.
	for _, key := range []string{
		`"marks_awarded"`, `"max_marks"`, `"confidence_score"`, `"justification"`,
	} {
		assert.Contains(t, prompt, key)
	}
	assert.Contains(t, prompt, "must start with { and end with }")
	assert.False(t, strings.HasSuffix(prompt, "\n"), "prompt is trimmed")
}

func TestBuildPrompt_EmptyAnswer(t *testing.T) {
	points := []MarkingPoint{{QuestionID: "1", PointIndex: 1, Text: "a point", Marks: 1}}
	prompt := BuildPrompt("1", points, "")
	assert.Contains(t, prompt, "- a point")
	assert.Contains(t, prompt, "**Student's Answer:**")
}
