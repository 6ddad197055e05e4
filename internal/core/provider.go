package core

import "context"

// ProviderID identifies one of the supported integrations. The canonical
// form is used as the map/struct key everywhere in-process; Slug() is the
// form used on the wire and in storage file names.
type ProviderID string

const (
	ProviderClaude           ProviderID = "claude"
	ProviderGemini           ProviderID = "gemini"
	ProviderGeminiMonitoring ProviderID = "geminiMonitoring"
	ProviderOpenAI           ProviderID = "openai"
)

var AllProviderIDs = []ProviderID{
	ProviderClaude,
	ProviderGemini,
	ProviderGeminiMonitoring,
	ProviderOpenAI,
}

// Slug returns the external (URL path / storage key) form of the provider id.
func (p ProviderID) Slug() string {
	if p == ProviderGeminiMonitoring {
		return "gemini-monitoring"
	}
	return string(p)
}

// ParseProviderID accepts both the canonical and the slug form.
func ParseProviderID(s string) (ProviderID, bool) {
	switch s {
	case string(ProviderClaude):
		return ProviderClaude, true
	case string(ProviderGemini):
		return ProviderGemini, true
	case string(ProviderOpenAI):
		return ProviderOpenAI, true
	case string(ProviderGeminiMonitoring), "gemini-monitoring":
		return ProviderGeminiMonitoring, true
	}
	return "", false
}

type ProviderInfo struct {
	Name    string   `json:"name"`
	Company string   `json:"company"`
	DocURL  string   `json:"doc_url,omitempty"`
	Fields  []string `json:"fields"` // credential fields the connect call expects
}

// Credential carries whatever secret material a provider adapter needs for a
// single fetch. It is request-scoped: adapters never persist it.
type Credential struct {
	APIKey             string `json:"apiKey,omitempty"`
	ServiceAccountJSON string `json:"serviceAccountJson,omitempty"`
	ProjectID          string `json:"projectId,omitempty"`
}

// Adapter fetches one provider's usage snapshot with a caller-supplied
// credential and normalizes it into a UsageRecord. Implementations make no
// retries and mutate no local state; failures are reported as *FetchError.
type Adapter interface {
	ID() ProviderID
	Describe() ProviderInfo
	Fetch(ctx context.Context, cred Credential) (UsageRecord, error)
}
