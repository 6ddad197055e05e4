package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prismhq/prism/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	ctx := context.Background()
	if err := s.Record(ctx, "a@x.com", core.ProviderClaude, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "a@x.com", core.ProviderOpenAI, core.CredentialError("API key is required")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "b@x.com", core.ProviderClaude, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.Recent(ctx, "a@x.com", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	// Newest first.
	if entries[0].Provider != "openai" || entries[0].OK || entries[0].StatusCode != 400 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[0].Detail != "API key is required" {
		t.Errorf("detail = %q", entries[0].Detail)
	}
	if entries[1].Provider != "claude" || !entries[1].OK || entries[1].StatusCode != 200 {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestRecent_LimitAndIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, "a@x.com", core.ProviderGemini, nil); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.Recent(ctx, "a@x.com", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("len(entries) = %d, want limit 3", len(entries))
	}

	other, err := s.Recent(ctx, "b@x.com", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("entries leaked across identities: %+v", other)
	}
}

func TestLastSuccess(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.LastSuccess(ctx, "a@x.com", core.ProviderClaude)
	if err != nil {
		t.Fatalf("LastSuccess: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("LastSuccess with no rows = %v, want zero", got)
	}

	when := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return when }
	if err := s.Record(ctx, "a@x.com", core.ProviderClaude, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "a@x.com", core.ProviderClaude, core.UpstreamError(401, "bad key")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err = s.LastSuccess(ctx, "a@x.com", core.ProviderClaude)
	if err != nil {
		t.Fatalf("LastSuccess: %v", err)
	}
	if !got.Equal(when) {
		t.Errorf("LastSuccess = %v, want %v", got, when)
	}
}
