// Package claude implements the Anthropic usage-report adapter.
//
// The usage endpoint needs an Admin API key from console.anthropic.com; a
// regular workspace key gets a 401. Buckets come back one per model per day,
// so same-day buckets are merged during normalization.
package claude

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/providers/providerbase"
	"github.com/prismhq/prism/internal/providers/shared"
)

const defaultBaseURL = "https://api.anthropic.com/v1"

const anthropicVersion = "2023-06-01"

type usageResponse struct {
	Data []usageBucket `json:"data"`
}

type usageBucket struct {
	StartTime    string `json:"start_time"`
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

type Adapter struct {
	providerbase.Base

	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

func New() *Adapter {
	return &Adapter{
		Base: providerbase.New(providerbase.Spec{
			ID: core.ProviderClaude,
			Info: core.ProviderInfo{
				Name:    "Claude",
				Company: "Anthropic",
				DocURL:  "https://docs.anthropic.com/en/api/usage-cost-api",
				Fields:  []string{"adminKey"},
			},
		}),
		BaseURL: defaultBaseURL,
		Now:     time.Now,
	}
}

func (a *Adapter) Fetch(ctx context.Context, cred core.Credential) (core.UsageRecord, error) {
	if cred.APIKey == "" {
		return nil, core.CredentialError("Admin API key is required")
	}

	start, end := core.ReportWindow(a.Now())
	query := url.Values{}
	query.Set("bucket_width", "1d")
	query.Set("starting_at", core.FormatWindowTime(start))
	query.Set("ending_at", core.FormatWindowTime(end))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.BaseURL+"/usage/messages?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("claude: creating request: %w", err)
	}
	req.Header.Set("x-api-key", cred.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, ferr := shared.Do(a.Client, req, "Anthropic")
	if ferr != nil {
		return nil, ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, shared.UpstreamFromResponse(resp, "Anthropic")
	}

	var usage usageResponse
	if err := shared.DecodeBody(resp, &usage); err != nil {
		return nil, fmt.Errorf("claude: %w", err)
	}

	return Normalize(usage.Data), nil
}

// Normalize aggregates raw usage buckets into the Claude record: running
// input/output totals, a per-model breakdown, and a per-day trend where
// buckets sharing a date are summed into one entry.
func Normalize(buckets []usageBucket) core.ClaudeUsage {
	record := core.ClaudeUsage{
		ModelBreakdown: map[string]core.ModelTokens{},
		DailyTrend:     []core.DayTokens{},
	}

	dayIndex := map[string]int{}
	for _, bucket := range buckets {
		record.TotalInputTokens += bucket.InputTokens
		record.TotalOutputTokens += bucket.OutputTokens

		model := bucket.Model
		if model == "" {
			model = "unknown"
		}
		mt := record.ModelBreakdown[model]
		mt.Input += bucket.InputTokens
		mt.Output += bucket.OutputTokens
		record.ModelBreakdown[model] = mt

		date := core.DateOf(bucket.StartTime)
		if i, ok := dayIndex[date]; ok {
			record.DailyTrend[i].Input += bucket.InputTokens
			record.DailyTrend[i].Output += bucket.OutputTokens
			record.DailyTrend[i].Total += bucket.InputTokens + bucket.OutputTokens
		} else {
			dayIndex[date] = len(record.DailyTrend)
			record.DailyTrend = append(record.DailyTrend, core.DayTokens{
				Date:   date,
				Input:  bucket.InputTokens,
				Output: bucket.OutputTokens,
				Total:  bucket.InputTokens + bucket.OutputTokens,
			})
		}
	}

	record.TotalTokens = record.TotalInputTokens + record.TotalOutputTokens

	// ISO dates sort correctly as strings.
	sort.Slice(record.DailyTrend, func(i, j int) bool {
		return record.DailyTrend[i].Date < record.DailyTrend[j].Date
	})

	return record
}
