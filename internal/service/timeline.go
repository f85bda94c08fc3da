package service

import (
	"sort"
	"strings"
	"time"

	"byteneko/internal/model"
)

// Timestamp-style labels are trusted anywhere in the survey; a bare
// "fecha"/"date" only counts when it appears in the first couple of
// questions, where imports put their metadata columns.
var (
	timestampFragments = []string{
		"timestamp", "marca temporal", "fecha respuesta",
		"fecha de respuesta", "created", "creado", "submitted",
	}
	genericDateFragments = []string{"fecha", "date"}
)

// IsDateQuestion reports whether a question carries submission dates
// rather than opinions. position is the zero-based order of the
// question within the survey.
func IsDateQuestion(q *model.Question, position int) bool {
	if q.Type != model.QuestionTypeText {
		return false
	}
	if ContainsAny(q.Text, timestampFragments...) {
		return true
	}
	if position < 2 && ContainsAny(q.Text, genericDateFragments...) {
		return true
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2/1/2006 15:04",
	"2/1/2006",
}

// mdyLayouts are tried last: ambiguous slash dates resolve day-first,
// month-first only rescues values like 01/25/2024 that day-first rejects.
var mdyLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

var ampmReplacer = strings.NewReplacer(
	"a. m.", "AM", "p. m.", "PM",
	"a.m.", "AM", "p.m.", "PM",
	"a. m", "AM", "p. m", "PM",
)

var twelveHourLayouts = []string{
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"02/01/2006 3:04:05 PM",
	"2006-01-02 3:04:05 PM",
}

// ParseSubmissionTime parses the date formats seen in imported sheets.
// Returns the zero time when nothing matches.
func ParseSubmissionTime(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	// Spreadsheet exports append timezone words after the timestamp.
	if idx := strings.Index(v, " GMT"); idx > 0 {
		v = v[:idx]
	}
	if idx := strings.Index(v, " UTC"); idx > 0 {
		v = v[:idx]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	if strings.Contains(v, "m.") || strings.Contains(v, "M") {
		folded := ampmReplacer.Replace(v)
		for _, layout := range twelveHourLayouts {
			if t, err := time.Parse(layout, folded); err == nil {
				return t, true
			}
		}
	}
	for _, layout := range mdyLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuildTimeline buckets submission times per calendar day, sorted
// ascending. A burst of more than 10 rows inside any 5 minute span
// flags the survey as a probable bulk import, so the chart is labelled
// as upload activity rather than respondent activity.
func BuildTimeline(times []time.Time, source model.TimelineSource, questionID string) *model.Timeline {
	tl := &model.Timeline{Source: source, QuestionID: questionID}
	if len(times) == 0 {
		tl.Source = model.TimelineSourceNone
		return tl
	}
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	counts := make(map[string]int)
	for _, t := range sorted {
		counts[t.Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		tl.Labels = append(tl.Labels, d)
		tl.Data = append(tl.Data, counts[d])
	}

	if hasBulkBurst(sorted) {
		tl.Warning = "las marcas de tiempo sugieren una carga masiva, no actividad de respondentes"
	}
	return tl
}

func hasBulkBurst(sorted []time.Time) bool {
	const window = 5 * time.Minute
	lo := 0
	for hi := range sorted {
		for sorted[hi].Sub(sorted[lo]) > window {
			lo++
		}
		if hi-lo+1 > 10 {
			return true
		}
	}
	return false
}
