package core

import (
	"strings"
	"time"
)

// ReportWindowDays is the usage report lookback shared by every adapter
// that queries time-bucketed data.
const ReportWindowDays = 30

// ReportWindow returns the [start, end] pair for a usage report ending at
// now, truncated to whole seconds so the formatted timestamps carry no
// fractional part.
func ReportWindow(now time.Time) (start, end time.Time) {
	end = now.UTC().Truncate(time.Second)
	start = end.AddDate(0, 0, -ReportWindowDays)
	return start, end
}

// FormatWindowTime renders a window boundary as an RFC 3339 UTC timestamp
// with a trailing Z and no sub-second digits.
func FormatWindowTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// DateOf returns the date portion of an RFC 3339 timestamp string. Day
// bucketing matches on this value, so lexicographic date ordering is also
// chronological ordering.
func DateOf(timestamp string) string {
	if i := strings.IndexByte(timestamp, 'T'); i >= 0 {
		return timestamp[:i]
	}
	return timestamp
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayLabel maps a "2006-01-02" date to its three-letter weekday label.
// Unparseable dates fall back to the raw string.
func WeekdayLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return weekdayLabels[int(t.Weekday())]
}
