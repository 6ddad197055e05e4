package core

// UsageRecord is the normalized result of one provider fetch. The concrete
// variants carry provider-specific fields; JSON field names match the wire
// shape the connect routes return.
type UsageRecord interface {
	Provider() ProviderID
}

type ModelTokens struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
}

type DayTokens struct {
	Date   string `json:"date"` // "2024-01-01"
	Input  int64  `json:"input"`
	Output int64  `json:"output"`
	Total  int64  `json:"total"`
}

// ClaudeUsage aggregates 30 days of Anthropic usage buckets.
// Invariants: TotalTokens == TotalInputTokens + TotalOutputTokens;
// DailyTrend is sorted ascending by date with one entry per date.
type ClaudeUsage struct {
	TotalTokens       int64                  `json:"totalTokens"`
	TotalInputTokens  int64                  `json:"totalInputTokens"`
	TotalOutputTokens int64                  `json:"totalOutputTokens"`
	ModelBreakdown    map[string]ModelTokens `json:"modelBreakdown"`
	DailyTrend        []DayTokens            `json:"dailyTrend"`
}

func (ClaudeUsage) Provider() ProviderID { return ProviderClaude }

type GeminiModel struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	InputTokenLimit  int64  `json:"inputTokenLimit"`
	OutputTokenLimit int64  `json:"outputTokenLimit"`
}

// GeminiUsage reflects key validity and model capabilities; AI Studio does
// not expose historical usage through a public API.
type GeminiUsage struct {
	KeyValid             bool          `json:"keyValid"`
	TotalModelsAvailable int           `json:"totalModelsAvailable"`
	Models               []GeminiModel `json:"models"`
	LiveTokenCount       *int64        `json:"liveTokenCount"`
	Note                 string        `json:"note,omitempty"`
}

func (GeminiUsage) Provider() ProviderID { return ProviderGemini }

type DayRequests struct {
	Date     string `json:"date"`
	Requests int64  `json:"requests"`
}

// GeminiMonitoringUsage carries request counts from Google Cloud Monitoring.
// Invariant: TotalRequests == round(sum of the daily request rates), rounded
// once at the end, with one DailyTrend entry per distinct date.
type GeminiMonitoringUsage struct {
	TotalRequests int64         `json:"totalRequests"`
	DailyTrend    []DayRequests `json:"dailyTrend"`
	ProjectID     string        `json:"projectId"`
	Note          string        `json:"note,omitempty"`
}

func (GeminiMonitoringUsage) Provider() ProviderID { return ProviderGeminiMonitoring }

type OpenAIModel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnedBy string `json:"ownedBy"`
	Created string `json:"created"` // "2024-05-13"
}

// OpenAIUsage reflects key validity and accessible models; token history
// needs an Admin key, so the standard-key record carries capabilities only.
type OpenAIUsage struct {
	KeyValid             bool          `json:"keyValid"`
	Tier                 string        `json:"tier"`
	TotalModelsAvailable int           `json:"totalModelsAvailable"`
	Models               []OpenAIModel `json:"models"`
	UsageNote            string        `json:"usageNote,omitempty"`
}

func (OpenAIUsage) Provider() ProviderID { return ProviderOpenAI }
