// Package openai implements the OpenAI (standard API key) adapter.
//
// Token history needs an Admin key, so a standard key yields key validity and
// the accessible chat-capable model list. The billing subscription lookup for
// the tier label is best-effort and advisory only.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/providers/providerbase"
	"github.com/prismhq/prism/internal/providers/shared"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	maxModels      = 20

	usageNote = "Historical token usage requires an Admin API key. " +
		"Connect an Admin key to see 30-day token breakdowns."
)

var relevantPrefixes = []string{"gpt", "o1", "o3", "chatgpt"}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID      string `json:"id"`
	Created int64  `json:"created"` // seconds since epoch
	OwnedBy string `json:"owned_by"`
}

type subscriptionResponse struct {
	Plan struct {
		Title string `json:"title"`
	} `json:"plan"`
	AccessUntil int64 `json:"access_until"`
}

type Adapter struct {
	providerbase.Base

	BaseURL string
	Client  *http.Client
}

func New() *Adapter {
	return &Adapter{
		Base: providerbase.New(providerbase.Spec{
			ID: core.ProviderOpenAI,
			Info: core.ProviderInfo{
				Name:    "ChatGPT",
				Company: "OpenAI",
				DocURL:  "https://platform.openai.com/docs/api-reference/models",
				Fields:  []string{"apiKey"},
			},
		}),
		BaseURL: defaultBaseURL,
	}
}

func (a *Adapter) Fetch(ctx context.Context, cred core.Credential) (core.UsageRecord, error) {
	if cred.APIKey == "" {
		return nil, core.CredentialError("API key is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("openai: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.APIKey)

	resp, ferr := shared.Do(a.Client, req, "OpenAI")
	if ferr != nil {
		return nil, ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, shared.UpstreamFromResponse(resp, "OpenAI")
	}

	var modelsResp modelsResponse
	if err := shared.DecodeBody(resp, &modelsResp); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	models := RelevantModels(modelsResp.Data)

	record := core.OpenAIUsage{
		KeyValid:             true,
		Tier:                 a.lookupTier(ctx, cred.APIKey),
		TotalModelsAvailable: len(models),
		Models:               models,
		UsageNote:            usageNote,
	}
	return record, nil
}

// RelevantModels filters to the chat-capable families the key can call,
// newest first, capped at maxModels, with the creation epoch mapped to a
// calendar date.
func RelevantModels(all []modelEntry) []core.OpenAIModel {
	var relevant []modelEntry
	for _, m := range all {
		for _, prefix := range relevantPrefixes {
			if strings.HasPrefix(m.ID, prefix) {
				relevant = append(relevant, m)
				break
			}
		}
	}

	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].Created > relevant[j].Created
	})
	if len(relevant) > maxModels {
		relevant = relevant[:maxModels]
	}

	models := make([]core.OpenAIModel, 0, len(relevant))
	for _, m := range relevant {
		models = append(models, core.OpenAIModel{
			ID:      m.ID,
			Name:    m.ID,
			OwnedBy: m.OwnedBy,
			Created: time.Unix(m.Created, 0).UTC().Format("2006-01-02"),
		})
	}
	return models
}

// lookupTier reads the legacy billing subscription endpoint to label the
// account tier. Any failure keeps the "Standard" default; the exact value is
// advisory and never load-bearing.
func (a *Adapter) lookupTier(ctx context.Context, apiKey string) string {
	tier := "Standard"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.BaseURL+"/dashboard/billing/subscription", nil)
	if err != nil {
		return tier
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, ferr := shared.Do(a.Client, req, "OpenAI")
	if ferr != nil {
		return tier
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tier
	}

	var sub subscriptionResponse
	if err := shared.DecodeBody(resp, &sub); err != nil {
		return tier
	}
	if sub.Plan.Title != "" || sub.AccessUntil != 0 {
		return "Pay-as-you-go"
	}
	return "Free"
}
