package core

import (
	"testing"
	"time"
)

func TestReportWindow(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 30, 45, 987654321, time.UTC)
	start, end := ReportWindow(now)

	if end.Nanosecond() != 0 {
		t.Errorf("end not truncated to whole seconds: %v", end)
	}
	if got := end.Sub(start); got != 30*24*time.Hour {
		t.Errorf("window length = %v, want 720h", got)
	}
	if got := FormatWindowTime(end); got != "2024-03-31T12:30:45Z" {
		t.Errorf("FormatWindowTime(end) = %q", got)
	}
	if got := FormatWindowTime(start); got != "2024-03-01T12:30:45Z" {
		t.Errorf("FormatWindowTime(start) = %q", got)
	}
}

func TestDateOf(t *testing.T) {
	if got := DateOf("2024-01-01T12:00:00Z"); got != "2024-01-01" {
		t.Errorf("DateOf = %q, want 2024-01-01", got)
	}
	if got := DateOf("2024-01-01"); got != "2024-01-01" {
		t.Errorf("DateOf without time = %q", got)
	}
	if got := DateOf(""); got != "" {
		t.Errorf("DateOf empty = %q", got)
	}
}

func TestWeekdayLabel(t *testing.T) {
	if got := WeekdayLabel("2024-01-01"); got != "Mon" {
		t.Errorf("2024-01-01 label = %q, want Mon", got)
	}
	if got := WeekdayLabel("2024-01-07"); got != "Sun" {
		t.Errorf("2024-01-07 label = %q, want Sun", got)
	}
	if got := WeekdayLabel("not-a-date"); got != "not-a-date" {
		t.Errorf("fallback label = %q", got)
	}
}

func TestParseProviderID(t *testing.T) {
	cases := map[string]ProviderID{
		"claude":            ProviderClaude,
		"gemini":            ProviderGemini,
		"openai":            ProviderOpenAI,
		"geminiMonitoring":  ProviderGeminiMonitoring,
		"gemini-monitoring": ProviderGeminiMonitoring,
	}
	for in, want := range cases {
		got, ok := ParseProviderID(in)
		if !ok || got != want {
			t.Errorf("ParseProviderID(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseProviderID("mistral"); ok {
		t.Error("ParseProviderID accepted unknown provider")
	}
	if got := ProviderGeminiMonitoring.Slug(); got != "gemini-monitoring" {
		t.Errorf("Slug = %q", got)
	}
}
