package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prismhq/prism/internal/core"
)

// Do executes a provider request and maps transport failures onto the
// network error class with a generic connectivity message.
func Do(client *http.Client, req *http.Request, providerName string) (*http.Response, *core.FetchError) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, core.NetworkError(fmt.Sprintf("Failed to connect to %s API", providerName), err)
	}
	return resp, nil
}

// apiErrorEnvelope matches the two error shapes the providers return:
// {"error": {"message": "..."}} and {"error": "..."}.
type apiErrorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// ExtractAPIError pulls the provider's own error message out of a non-2xx
// response body, returning "" when none is extractable.
func ExtractAPIError(body []byte) string {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if err := json.Unmarshal(env.Error, &plain); err == nil {
		return plain
	}
	return ""
}

// UpstreamFromResponse builds the upstream error for a failed provider call,
// mirroring the status code and preferring the provider's own message.
func UpstreamFromResponse(resp *http.Response, providerName string) *core.FetchError {
	body, _ := io.ReadAll(resp.Body)
	message := ExtractAPIError(body)
	if message == "" {
		message = fmt.Sprintf("%s API error: %d", providerName, resp.StatusCode)
	}
	return core.UpstreamError(resp.StatusCode, message)
}

// DecodeBody JSON-decodes a response body into v.
func DecodeBody(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}
	return nil
}
