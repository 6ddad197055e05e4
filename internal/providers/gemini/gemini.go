// Package gemini implements the Google AI Studio (API key) adapter.
//
// AI Studio exposes no historical usage through a public REST API, so the
// record carries key validity and model capabilities. A countTokens probe on
// a small model proves the key is live; that probe is best-effort and its
// failure never fails the fetch.
package gemini

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/providers/providerbase"
	"github.com/prismhq/prism/internal/providers/shared"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	probeModel     = "gemini-1.5-flash"
	maxModelDetail = 6

	usageNote = "Google AI Studio does not expose historical usage via public API. " +
		"Showing model capabilities and key validity. " +
		"Enable Google Cloud Monitoring for full usage metrics."
)

type modelsResponse struct {
	Models []modelInfo `json:"models"`
}

type modelInfo struct {
	Name             string `json:"name"` // "models/gemini-1.5-pro"
	DisplayName      string `json:"displayName"`
	InputTokenLimit  int64  `json:"inputTokenLimit"`
	OutputTokenLimit int64  `json:"outputTokenLimit"`
}

type Adapter struct {
	providerbase.Base

	BaseURL string
	Client  *http.Client
}

func New() *Adapter {
	return &Adapter{
		Base: providerbase.New(providerbase.Spec{
			ID: core.ProviderGemini,
			Info: core.ProviderInfo{
				Name:    "Gemini",
				Company: "Google AI",
				DocURL:  "https://ai.google.dev/gemini-api/docs",
				Fields:  []string{"apiKey"},
			},
		}),
		BaseURL: defaultBaseURL,
	}
}

func (a *Adapter) Fetch(ctx context.Context, cred core.Credential) (core.UsageRecord, error) {
	if cred.APIKey == "" {
		return nil, core.CredentialError("Gemini API key is required")
	}

	modelsURL := fmt.Sprintf("%s/models?key=%s&pageSize=50", a.BaseURL, cred.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating request: %w", err)
	}

	resp, ferr := shared.Do(a.Client, req, "Gemini")
	if ferr != nil {
		return nil, ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, shared.UpstreamFromResponse(resp, "Gemini")
	}

	var modelsResp modelsResponse
	if err := shared.DecodeBody(resp, &modelsResp); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	var geminiModels []modelInfo
	for _, m := range modelsResp.Models {
		if strings.Contains(m.Name, "gemini") {
			geminiModels = append(geminiModels, m)
		}
	}

	record := core.GeminiUsage{
		KeyValid:             true,
		TotalModelsAvailable: len(geminiModels),
		Models:               []core.GeminiModel{},
		LiveTokenCount:       a.probeTokenCount(ctx, cred.APIKey),
		Note:                 usageNote,
	}
	for _, m := range geminiModels {
		if len(record.Models) == maxModelDetail {
			break
		}
		name := m.DisplayName
		if name == "" {
			name = m.Name
		}
		record.Models = append(record.Models, core.GeminiModel{
			ID:               m.Name,
			Name:             name,
			InputTokenLimit:  m.InputTokenLimit,
			OutputTokenLimit: m.OutputTokenLimit,
		})
	}

	return record, nil
}

// probeTokenCount counts tokens for a fixed tiny prompt to confirm the key
// is active. Returns nil on any failure.
func (a *Adapter) probeTokenCount(ctx context.Context, apiKey string) *int64 {
	countURL := fmt.Sprintf("%s/models/%s:countTokens?key=%s", a.BaseURL, probeModel, apiKey)
	payload := []byte(`{"contents":[{"parts":[{"text":"Hello"}]}]}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, countURL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, ferr := shared.Do(a.Client, req, "Gemini")
	if ferr != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	var countResp struct {
		TotalTokens int64 `json:"totalTokens"`
	}
	if err := shared.DecodeBody(resp, &countResp); err != nil {
		return nil
	}
	return &countResp.TotalTokens
}
