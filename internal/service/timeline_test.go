package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteneko/internal/model"
)

func TestIsDateQuestion(t *testing.T) {
	ts := &model.Question{Text: "Marca temporal", Type: model.QuestionTypeText}
	assert.True(t, IsDateQuestion(ts, 5))

	generic := &model.Question{Text: "Fecha", Type: model.QuestionTypeText}
	assert.True(t, IsDateQuestion(generic, 0))
	assert.True(t, IsDateQuestion(generic, 1))
	// A later "fecha" column is probably an answer, not metadata.
	assert.False(t, IsDateQuestion(generic, 2))

	scale := &model.Question{Text: "Fecha", Type: model.QuestionTypeScale}
	assert.False(t, IsDateQuestion(scale, 0))
}

func TestParseSubmissionTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-15 10:30:00", "2024-01-15"},
		{"2024-01-15", "2024-01-15"},
		{"15/01/2024", "2024-01-15"},
		{"15/01/2024 18:45", "2024-01-15"},
		{"2024-01-15T10:30:00Z", "2024-01-15"},
		{"15-01-2024", "2024-01-15"},
		{"15/1/2024 6:45:10 p. m.", "2024-01-15"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseSubmissionTime(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.Format("2006-01-02"))
		})
	}

	_, ok := ParseSubmissionTime("no es una fecha")
	assert.False(t, ok)
	_, ok = ParseSubmissionTime("")
	assert.False(t, ok)
}

func TestParseSubmissionTimeMonthFirstFallback(t *testing.T) {
	// Day-first rejects a 25th month, so month-first rescues it.
	got, ok := ParseSubmissionTime("01/25/2024")
	require.True(t, ok)
	assert.Equal(t, "2024-01-25", got.Format("2006-01-02"))
}

func TestBuildTimelineBuckets(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02 15:04", s)
		require.NoError(t, err)
		return d
	}
	tl := BuildTimeline([]time.Time{
		day("2024-01-16 09:00"),
		day("2024-01-15 10:00"),
		day("2024-01-15 11:00"),
	}, model.TimelineSourceContent, "q9")

	assert.Equal(t, []string{"2024-01-15", "2024-01-16"}, tl.Labels)
	assert.Equal(t, []int{2, 1}, tl.Data)
	assert.Equal(t, model.TimelineSourceContent, tl.Source)
	assert.Equal(t, "q9", tl.QuestionID)
	assert.Empty(t, tl.Warning)
}

func TestBuildTimelineEmpty(t *testing.T) {
	tl := BuildTimeline(nil, model.TimelineSourceSystem, "")
	assert.Equal(t, model.TimelineSourceNone, tl.Source)
	assert.Empty(t, tl.Labels)
}

func TestBuildTimelineBulkImportWarning(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	var burst []time.Time
	for i := 0; i < 12; i++ {
		burst = append(burst, base.Add(time.Duration(i)*10*time.Second))
	}
	tl := BuildTimeline(burst, model.TimelineSourceContent, "q1")
	assert.NotEmpty(t, tl.Warning)

	var spread []time.Time
	for i := 0; i < 12; i++ {
		spread = append(spread, base.Add(time.Duration(i)*time.Hour))
	}
	tl = BuildTimeline(spread, model.TimelineSourceContent, "q1")
	assert.Empty(t, tl.Warning)
}
