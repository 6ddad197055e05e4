package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractAPIError(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"error":{"message":"invalid key"}}`, "invalid key"},
		{`{"error":"plain failure"}`, "plain failure"},
		{`{"error":{}}`, ""},
		{`{}`, ""},
		{`not json`, ""},
		{``, ""},
	}
	for _, tc := range cases {
		if got := ExtractAPIError([]byte(tc.body)); got != tc.want {
			t.Errorf("ExtractAPIError(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestUpstreamFromResponse_FallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	fe := UpstreamFromResponse(resp, "Anthropic")
	if fe.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", fe.StatusCode)
	}
	if fe.Message != "Anthropic API error: 502" {
		t.Errorf("message = %q", fe.Message)
	}
}
