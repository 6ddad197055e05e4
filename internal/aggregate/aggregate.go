// Package aggregate derives dashboard views from a store snapshot. Every
// function is pure: it reads the snapshot and options, allocates its result,
// and touches no shared state, so callers can recompute on every change
// notification without coordination.
package aggregate

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/store"
)

// Options carries the tunable constants of the derivation. The request scale
// approximates tokens from Cloud Monitoring request counts; it has no
// documented derivation, so it stays configurable rather than baked in.
type Options struct {
	RequestTokenScale  int64
	InputCostPerToken  float64
	OutputCostPerToken float64
}

// DefaultOptions uses Anthropic's $3/$15 per million token pricing and a
// rough 1000 tokens-per-request proxy for Gemini.
func DefaultOptions() Options {
	return Options{
		RequestTokenScale:  1000,
		InputCostPerToken:  3e-6,
		OutputCostPerToken: 15e-6,
	}
}

// TrendDay is one bar of the weekly chart. Gemini is nil when
// Gemini-Monitoring is not connected, zero-valued when it is connected but
// recorded nothing for that date.
type TrendDay struct {
	Day     string `json:"day"`
	Claude  int64  `json:"claude"`
	Gemini  *int64 `json:"gemini,omitempty"`
	ChatGPT *int64 `json:"chatgpt,omitempty"` // sample series only; no live daily data for OpenAI
}

// ModelShare is one slice of the model-usage pie.
type ModelShare struct {
	Name  string `json:"name"`
	Usage int    `json:"usage"` // integer percent of the grand total
}

// View bundles every derived number the dashboard shows.
type View struct {
	Sample       bool         `json:"sample"` // true when illustrative fallbacks are shown
	TotalTokens  int64        `json:"totalTokens"`
	InputTokens  int64        `json:"inputTokens"`
	OutputTokens int64        `json:"outputTokens"`
	CostUSD      float64      `json:"costUsd"`
	WeeklyTrend  []TrendDay   `json:"weeklyTrend"`
	ModelMix     []ModelShare `json:"modelMix"`
}

const trendDays = 7

// Derive computes the full dashboard view from one snapshot.
func Derive(snap store.Snapshot, opts Options) View {
	hasClaude := snap.Claude != nil
	hasReal := snap.HasRealData()

	v := View{
		Sample:      !hasReal && !hasClaude,
		WeeklyTrend: WeeklyTrend(snap, opts),
		ModelMix:    ModelMix(snap),
		CostUSD:     Cost(snap, opts),
	}
	switch {
	case hasClaude:
		v.TotalTokens = snap.Claude.TotalTokens
		v.InputTokens = snap.Claude.TotalInputTokens
		v.OutputTokens = snap.Claude.TotalOutputTokens
	case hasReal:
		// Another provider is live but carries no token totals.
	default:
		v.TotalTokens = sampleTotalTokens
		v.InputTokens = sampleInputTokens
		v.OutputTokens = sampleOutputTokens
	}
	return v
}

// WeeklyTrend returns the last seven Claude days, labelled by weekday, with
// scaled Gemini request counts attached when monitoring is connected. Without
// live Claude data it returns the fixed sample series.
func WeeklyTrend(snap store.Snapshot, opts Options) []TrendDay {
	if snap.Claude == nil {
		return sampleWeeklyTrend()
	}

	trend := snap.Claude.DailyTrend
	if len(trend) > trendDays {
		trend = trend[len(trend)-trendDays:]
	}

	claudeByDate := lo.SliceToMap(snap.Claude.DailyTrend, func(d core.DayTokens) (string, int64) {
		return d.Date, d.Total
	})
	var geminiByDate map[string]int64
	if snap.GeminiMonitoring != nil {
		geminiByDate = lo.SliceToMap(snap.GeminiMonitoring.DailyTrend, func(d core.DayRequests) (string, int64) {
			return d.Date, d.Requests
		})
	}

	dates := lo.Uniq(lo.Map(trend, func(d core.DayTokens, _ int) string { return d.Date }))
	sort.Strings(dates)

	return lo.Map(dates, func(date string, _ int) TrendDay {
		day := TrendDay{
			Day:    core.WeekdayLabel(date),
			Claude: claudeByDate[date],
		}
		if geminiByDate != nil {
			scaled := geminiByDate[date] * opts.RequestTokenScale
			day.Gemini = &scaled
		}
		return day
	})
}

const maxShares = 5

// ModelMix builds the top-5 model usage shares. Claude's token breakdown is
// collapsed to the first three hyphen segments of each model id; with only
// Gemini/OpenAI connected a declining synthetic distribution stands in, and
// with nothing connected the fixed sample mix is returned.
func ModelMix(snap store.Snapshot) []ModelShare {
	if !snap.HasRealData() {
		return sampleModelMix()
	}

	combined := map[string]int64{}
	if snap.Claude != nil {
		for model, tokens := range snap.Claude.ModelBreakdown {
			combined[shortModel(model)] += tokens.Input + tokens.Output
		}
	}
	if len(combined) == 0 {
		for i, name := range placeholderModels(snap) {
			combined[name] = 100 - int64(i)*15
		}
	}

	total := lo.Sum(lo.Values(combined))
	if total == 0 {
		total = 1
	}

	shares := lo.MapToSlice(combined, func(name string, usage int64) ModelShare {
		return ModelShare{Name: name, Usage: int(float64(usage)/float64(total)*100 + 0.5)}
	})
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Usage != shares[j].Usage {
			return shares[i].Usage > shares[j].Usage
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > maxShares {
		shares = shares[:maxShares]
	}
	return shares
}

// Cost estimates blended spend. Only Claude carries token-level data; with
// another provider connected but not Claude the estimate is 0, and with
// nothing connected the sample figure is shown.
func Cost(snap store.Snapshot, opts Options) float64 {
	switch {
	case snap.Claude != nil:
		return float64(snap.Claude.TotalInputTokens)*opts.InputCostPerToken +
			float64(snap.Claude.TotalOutputTokens)*opts.OutputCostPerToken
	case snap.HasRealData():
		return 0
	default:
		return sampleCostUSD
	}
}

// shortModel collapses a model id to its first three hyphen segments, so
// dated releases of the same model land in one bucket.
func shortModel(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "-")
}

// placeholderModels picks up to 3 Gemini names and 2 OpenAI ids to stand in
// for a token breakdown that neither provider exposes.
func placeholderModels(snap store.Snapshot) []string {
	var names []string
	if snap.Gemini != nil {
		for _, m := range snap.Gemini.Models {
			if len(names) == 3 {
				break
			}
			name := m.Name
			if name == "" {
				if idx := strings.LastIndex(m.ID, "/"); idx >= 0 {
					name = m.ID[idx+1:]
				}
			}
			if name == "" {
				name = m.ID
			}
			names = append(names, name)
		}
	}
	if snap.OpenAI != nil {
		count := 0
		for _, m := range snap.OpenAI.Models {
			if count == 2 {
				break
			}
			names = append(names, m.ID)
			count++
		}
	}
	return names
}
