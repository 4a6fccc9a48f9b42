package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark_String(t *testing.T) {
	tests := []struct {
		name string
		mark Mark
		want string
	}{
		{name: "scored", mark: Scored(4), want: "4"},
		{name: "scored zero", mark: Scored(0), want: "0"},
		{name: "unscored", mark: Unscored(), want: "N/A"},
		{name: "failed", mark: Failed(), want: "Error"},
		{name: "zero value reads as failure", mark: Mark{}, want: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mark.String())
		})
	}
}

func TestMark_Value(t *testing.T) {
	v, ok := Scored(7).Value()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = Unscored().Value()
	assert.False(t, ok)
	_, ok = Failed().Value()
	assert.False(t, ok)
}

func TestMark_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		mark Mark
		want string
	}{
		{name: "scored is a number", mark: Scored(3), want: `3`},
		{name: "unscored is the N/A string", mark: Unscored(), want: `"N/A"`},
		{name: "failed is the Error string", mark: Failed(), want: `"Error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.mark)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestParseMark(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Mark
		wantErr bool
	}{
		{name: "numeric", in: "4", want: Scored(4)},
		{name: "unscored", in: "N/A", want: Unscored()},
		{name: "failed", in: "Error", want: Failed()},
		{name: "garbage", in: "four", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMark(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMark)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// Round trip through the textual form.
			back, err := ParseMark(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}
}

func TestScoreRecord_Band(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceBand
	}{
		{confidence: 0.95, want: BandHigh},
		{confidence: 0.85, want: BandHigh},
		{confidence: 0.7, want: BandMedium},
		{confidence: 0.6, want: BandMedium},
		{confidence: 0.59, want: BandLow},
		{confidence: 0, want: BandLow},
	}

	for _, tt := range tests {
		r := ScoreRecord{Confidence: tt.confidence}
		assert.Equal(t, tt.want, r.Band(), "confidence %v", tt.confidence)
	}
}

func TestScoreRecord_Validate(t *testing.T) {
	good := ScoreRecord{
		StudentID: "S_01", QuestionID: "1",
		Awarded: Scored(2), MaxMarks: 4,
		Confidence: 0.8, Justification: "partial",
	}
	require.NoError(t, good.Validate())

	missing := ScoreRecord{QuestionID: "1"}
	require.ErrorIs(t, missing.Validate(), ErrInvalidRecord)

	outOfRange := good
	outOfRange.Confidence = 1.5
	require.ErrorIs(t, outOfRange.Validate(), ErrInvalidRecord)
}

func TestValidatePoints(t *testing.T) {
	valid := []MarkingPoint{
		{QuestionID: "1", PointIndex: 1, Text: "a", Marks: 1},
		{QuestionID: "1", PointIndex: 2, Text: "b", Marks: 2},
		{QuestionID: "2", PointIndex: 1, Text: "c", Marks: 1},
	}
	require.NoError(t, ValidatePoints(valid))

	dup := append(valid, MarkingPoint{QuestionID: "1", PointIndex: 2, Text: "d", Marks: 1})
	require.ErrorIs(t, ValidatePoints(dup), ErrDuplicatePoint)

	bad := []MarkingPoint{{QuestionID: "1", PointIndex: 0, Text: "a", Marks: 1}}
	require.ErrorIs(t, ValidatePoints(bad), ErrInvalidPoint)
}
