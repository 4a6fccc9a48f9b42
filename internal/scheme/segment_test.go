package scheme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScheme = `MARKING SCHEME - BIOLOGY PAPER 2
1 Explain osmosis.
(i) movement of water molecules
(ii) across a semi-permeable membrane
2x2=4
2 State two uses of energy in the body.
(i) muscle contraction
(ii) maintaining body temperature
3 This question has no bullet markers and must yield no points.
`

func TestExtractQuestions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantIDs []string
	}{
		{
			name:    "three questions with leading preamble discarded",
			text:    sampleScheme,
			wantIDs: []string{"1", "2", "3"},
		},
		{
			name:    "empty document",
			text:    "",
			wantIDs: nil,
		},
		{
			name:    "no boundaries",
			text:    "just prose, nothing numbered at line starts",
			wantIDs: nil,
		},
		{
			name:    "four digit line start is not a boundary",
			text:    "2024 was a leap year",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := ExtractQuestions(tt.text)
			ids := make([]string, 0, len(questions))
			for _, q := range questions {
				ids = append(ids, q.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSplitPoints(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "stem discarded, two bullets give two fragments",
			body: "Explain X.\n(i) point A\n(ii) point B",
			want: []string{"point A", "point B"},
		},
		{
			name: "uppercase and padded bullets",
			body: "(I) alpha ( ii ) beta (III) gamma",
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "no bullets yields no points",
			body: "   plain text   ",
			want: nil,
		},
		{
			name: "empty fragments discarded",
			body: "(i)(ii) only the second",
			want: []string{"only the second"},
		},
		{
			name: "empty body",
			body: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPoints(tt.body)
			assert.Equal(t, tt.want, got)
			for _, p := range got {
				assert.NotEmpty(t, p)
				assert.Equal(t, strings.TrimSpace(p), p, "fragments must be trimmed")
			}
		})
	}
}

func TestDetectMarkAllocation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  MarkAllocation
		found bool
	}{
		{
			name:  "lowercase x",
			body:  "something 3x1=3 something",
			want:  MarkAllocation{Total: 3, Parts: 3, PerPart: 1},
			found: true,
		},
		{
			name:  "uppercase with whitespace",
			body:  "award 2 X 2 = 4 overall",
			want:  MarkAllocation{Total: 4, Parts: 2, PerPart: 2},
			found: true,
		},
		{
			name:  "no pattern",
			body:  "no allocation here",
			found: false,
		},
		{
			name:  "multiplication without equals is ignored",
			body:  "2x3 but no total",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := DetectMarkAllocation(tt.body)
			require.Equal(t, tt.found, found)
			if found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegexSegmenter_Segment(t *testing.T) {
	points, err := NewRegexSegmenter().Segment(sampleScheme)
	require.NoError(t, err)

	// Question 1 carries a 2x2=4 allocation: 2 marks per point. Question 2
	// has no allocation: 1 mark per point. Question 3 has no bullets and
	// yields no points at all.
	byQuestion := map[string]int{}
	for _, p := range points {
		byQuestion[p.QuestionID]++
		assert.NotEmpty(t, p.Text)
		assert.NotContains(t, p.Text, "\n", "whitespace runs must collapse")
	}
	assert.Equal(t, 2, byQuestion["1"])
	assert.Equal(t, 2, byQuestion["2"])
	assert.Zero(t, byQuestion["3"])

	for _, p := range points {
		switch p.QuestionID {
		case "1":
			assert.Equal(t, 2, p.Marks)
		case "2":
			assert.Equal(t, 1, p.Marks)
		}
	}
}

func TestRegexSegmenter_Segment_UniquePairs(t *testing.T) {
	points, err := NewRegexSegmenter().Segment(sampleScheme)
	require.NoError(t, err)

	type key struct {
		qid string
		idx int
	}
	seen := map[key]bool{}
	for _, p := range points {
		k := key{p.QuestionID, p.PointIndex}
		assert.False(t, seen[k], "duplicate pair %v", k)
		seen[k] = true
		assert.GreaterOrEqual(t, p.PointIndex, 1)
	}
}

func TestRegexSegmenter_Segment_NoQuestions(t *testing.T) {
	_, err := NewRegexSegmenter().Segment("no numbered lines anywhere")
	require.ErrorIs(t, err, ErrNoQuestions)
}
