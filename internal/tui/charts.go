package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type chartItem struct {
	Label string
	Value float64
	Color lipgloss.Color
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws values as a row of block glyphs scaled to the value
// range, resampling when there are more values than columns.
func RenderSparkline(values []float64, w int, color lipgloss.Color) string {
	if len(values) == 0 || w < 1 {
		return ""
	}

	if len(values) > w {
		step := float64(len(values)) / float64(w)
		sampled := make([]float64, w)
		for i := 0; i < w; i++ {
			idx := int(float64(i) * step)
			if idx >= len(values) {
				idx = len(values) - 1
			}
			sampled[i] = values[idx]
		}
		values = sampled
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(sparkBlocks)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		sb.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// RenderInlineGauge draws a compact filled/track percentage bar.
func RenderInlineGauge(pct float64, w int) string {
	if w < 4 {
		w = 4
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct / 100 * float64(w))
	if filled < 1 && pct > 0 {
		filled = 1
	}
	empty := w - filled

	barColor := colorGreen
	if pct >= 80 {
		barColor = colorRed
	} else if pct >= 50 {
		barColor = colorYellow
	}

	bar := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled))
	track := lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", empty))

	return bar + track
}

// RenderHBarChart draws one horizontal bar per item, scaled to the largest
// value, with the percentage printed after the bar.
func RenderHBarChart(items []chartItem, maxBarW, labelW int) string {
	if len(items) == 0 {
		return dimStyle.Render("  No data available")
	}
	if maxBarW < 4 {
		maxBarW = 4
	}

	maxVal := float64(0)
	for _, item := range items {
		if item.Value > maxVal {
			maxVal = item.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var lines []string
	for _, item := range items {
		label := item.Label
		if len(label) > labelW {
			label = label[:labelW-1] + "…"
		}

		barLen := int(item.Value / maxVal * float64(maxBarW))
		if barLen < 1 && item.Value > 0 {
			barLen = 1
		}
		emptyLen := maxBarW - barLen

		bar := lipgloss.NewStyle().Foreground(item.Color).Render(strings.Repeat("█", barLen))
		track := lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", emptyLen))
		valueStr := lipgloss.NewStyle().Foreground(item.Color).Bold(true).Render(fmt.Sprintf("%3.0f%%", item.Value))

		lines = append(lines, fmt.Sprintf("  %s %s%s  %s",
			labelStyle.Width(labelW).Render(label), bar, track, valueStr))
	}

	return strings.Join(lines, "\n")
}

// FormatTokens renders a token count with k/M suffixes for the dashboard.
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatUSD renders a dollar amount with two decimals.
func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
