package tui

import (
	"strings"
	"testing"
)

func TestRenderSparkline(t *testing.T) {
	out := RenderSparkline([]float64{0, 50, 100}, 10, colorGreen)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("sparkline missing extremes: %q", out)
	}

	if RenderSparkline(nil, 10, colorGreen) != "" {
		t.Error("empty values should render nothing")
	}

	// More values than columns get resampled down to width.
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	out = RenderSparkline(values, 10, colorGreen)
	if n := len([]rune(stripANSI(out))); n != 10 {
		t.Errorf("resampled width = %d, want 10", n)
	}
}

func TestRenderSparkline_FlatSeries(t *testing.T) {
	out := stripANSI(RenderSparkline([]float64{5, 5, 5}, 10, colorGreen))
	for _, r := range out {
		if r != '▁' {
			t.Errorf("flat series rendered %q", out)
			break
		}
	}
}

func TestRenderInlineGauge(t *testing.T) {
	out := stripANSI(RenderInlineGauge(50, 10))
	if strings.Count(out, "█") != 5 || strings.Count(out, "░") != 5 {
		t.Errorf("gauge at 50%% = %q", out)
	}

	// A tiny nonzero value still shows one filled cell.
	out = stripANSI(RenderInlineGauge(1, 10))
	if strings.Count(out, "█") != 1 {
		t.Errorf("gauge at 1%% = %q", out)
	}

	out = stripANSI(RenderInlineGauge(-5, 10))
	if strings.Count(out, "█") != 0 {
		t.Errorf("gauge below zero = %q", out)
	}
}

func TestRenderHBarChart(t *testing.T) {
	items := []chartItem{
		{Label: "claude-3-5", Value: 50, Color: colorPeach},
		{Label: "a-very-long-model-name-indeed", Value: 25, Color: colorBlue},
	}
	out := stripANSI(RenderHBarChart(items, 20, 12))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.Contains(lines[0], "claude-3-5") || !strings.Contains(lines[0], "50%") {
		t.Errorf("line[0] = %q", lines[0])
	}
	if !strings.Contains(lines[1], "…") {
		t.Errorf("long label not truncated: %q", lines[1])
	}

	if !strings.Contains(stripANSI(RenderHBarChart(nil, 20, 12)), "No data") {
		t.Error("empty chart should say no data")
	}
}

func TestFormatTokens(t *testing.T) {
	cases := map[int64]string{
		0:         "0",
		999:       "999",
		1_500:     "1.5k",
		2_456_000: "2.5M",
	}
	for in, want := range cases {
		if got := FormatTokens(in); got != want {
			t.Errorf("FormatTokens(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(45.2); got != "$45.20" {
		t.Errorf("FormatUSD = %q", got)
	}
}

// stripANSI removes escape sequences so assertions see the glyphs only.
func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
