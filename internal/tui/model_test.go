package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prismhq/prism/internal/aggregate"
	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/store"
)

func newTestModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewModel(st, "a@x.com", aggregate.DefaultOptions()), st
}

func TestUpdate_SnapshotMessagePopulatesView(t *testing.T) {
	m, st := newTestModel(t)
	if err := st.Write("a@x.com", core.ClaudeUsage{
		TotalTokens:       165,
		TotalInputTokens:  110,
		TotalOutputTokens: 55,
		DailyTrend:        []core.DayTokens{{Date: "2024-01-01", Total: 165}},
		ModelBreakdown:    map[string]core.ModelTokens{"claude-3-opus": {Input: 110, Output: 55}},
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	msg := m.readStore()
	updated, _ := m.Update(msg)
	m = updated.(Model)

	if m.loading {
		t.Error("still loading after snapshot")
	}
	if m.snap.Claude == nil || m.view.TotalTokens != 165 {
		t.Errorf("view = %+v", m.view)
	}

	out := stripANSI(m.View())
	if !strings.Contains(out, "a@x.com") {
		t.Errorf("view missing identity: %q", out)
	}
	if !strings.Contains(out, "claude-3-opus") {
		t.Errorf("view missing model mix entry: %q", out)
	}
	if !strings.Contains(out, "● claude") {
		t.Errorf("view missing connected marker: %q", out)
	}
	if !strings.Contains(out, "○ openai") {
		t.Errorf("view missing disconnected marker: %q", out)
	}
}

func TestUpdate_EmptyStoreShowsSampleData(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(m.readStore())
	m = updated.(Model)

	if !m.view.Sample {
		t.Error("empty store should derive sample view")
	}
	if out := stripANSI(m.View()); !strings.Contains(out, "sample data") {
		t.Errorf("view missing sample marker: %q", out)
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	for _, key := range []string{"q", "ctrl+c"} {
		var msg tea.KeyMsg
		if key == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("key %q returned no command", key)
		}
	}
}

func TestView_TotalsShowInputShareGauge(t *testing.T) {
	m, st := newTestModel(t)
	if err := st.Write("a@x.com", core.ClaudeUsage{
		TotalTokens:       200,
		TotalInputTokens:  100,
		TotalOutputTokens: 100,
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	updated, _ := m.Update(m.readStore())
	m = updated.(Model)

	out := stripANSI(m.View())
	if !strings.Contains(out, "input share") {
		t.Fatalf("view missing gauge label: %q", out)
	}
	if !strings.Contains(out, "50%") {
		t.Errorf("view missing gauge percentage: %q", out)
	}
	// Half of a 14-cell gauge filled.
	if !strings.Contains(out, strings.Repeat("█", 7)+strings.Repeat("░", 7)) {
		t.Errorf("view missing gauge bar: %q", out)
	}
}
