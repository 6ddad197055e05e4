package aggregate

// Illustrative figures shown before any provider is connected, so the
// dashboard renders a populated layout instead of zeros.
const (
	sampleTotalTokens  = 2_456_000
	sampleInputTokens  = 1_800_000
	sampleOutputTokens = 640_000
	sampleCostUSD      = 45.20
)

func sampleWeeklyTrend() []TrendDay {
	n := func(v int64) *int64 { return &v }
	return []TrendDay{
		{Day: "Mon", Claude: 12000, Gemini: n(4000), ChatGPT: n(8000)},
		{Day: "Tue", Claude: 18000, Gemini: n(8000), ChatGPT: n(11000)},
		{Day: "Wed", Claude: 25000, Gemini: n(6000), ChatGPT: n(15000)},
		{Day: "Thu", Claude: 22000, Gemini: n(10000), ChatGPT: n(9000)},
		{Day: "Fri", Claude: 30000, Gemini: n(12000), ChatGPT: n(20000)},
		{Day: "Sat", Claude: 8000, Gemini: n(2000), ChatGPT: n(5000)},
		{Day: "Sun", Claude: 5000, Gemini: n(1000), ChatGPT: n(2000)},
	}
}

func sampleModelMix() []ModelShare {
	return []ModelShare{
		{Name: "claude-3-5-sonnet", Usage: 35},
		{Name: "gpt-4o", Usage: 30},
		{Name: "claude-3-opus", Usage: 15},
		{Name: "gemini-1.5-pro", Usage: 12},
		{Name: "gpt-4-turbo", Usage: 8},
	}
}
