// Package tui renders the usage dashboard in the terminal. The model reads
// one snapshot from the integration store, derives the dashboard view, and
// re-reads whenever the store broadcasts a change for the active identity.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prismhq/prism/internal/aggregate"
	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/store"
)

type changeMsg core.ProviderID

type snapshotMsg struct {
	snap store.Snapshot
	view aggregate.View
}

type Model struct {
	st       *store.Store
	identity string
	opts     aggregate.Options

	snap store.Snapshot
	view aggregate.View

	changes     chan core.ProviderID
	unsubscribe func()

	spin    spinner.Model
	loading bool
	width   int
	height  int

	lastUpdate time.Time
}

func NewModel(st *store.Store, identity string, opts aggregate.Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorMauve)

	return Model{
		st:       st,
		identity: identity,
		opts:     opts,
		changes:  make(chan core.ProviderID, 8),
		spin:     sp,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.readStore, m.subscribe())
}

// subscribe registers with the store and forwards change notifications into
// the bubbletea loop via waitForChange.
func (m Model) subscribe() tea.Cmd {
	changes := m.changes
	cancel := m.st.Subscribe(m.identity, func(p core.ProviderID) {
		select {
		case changes <- p:
		default: // a pending refresh already covers this change
		}
	})
	_ = cancel // lives for the whole program run
	return m.waitForChange
}

func (m Model) waitForChange() tea.Msg {
	return changeMsg(<-m.changes)
}

func (m Model) readStore() tea.Msg {
	snap := m.st.ReadAll(m.identity)
	return snapshotMsg{snap: snap, view: aggregate.Derive(snap, m.opts)}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.readStore
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case changeMsg:
		return m, tea.Batch(m.readStore, m.waitForChange)

	case snapshotMsg:
		m.snap = msg.snap
		m.view = msg.view
		m.loading = false
		m.lastUpdate = time.Now()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	header := titleStyle.Render("prism") + dimStyle.Render("  ·  "+m.identity)
	if m.loading {
		header += "  " + m.spin.View()
	}
	sb.WriteString(header + "\n\n")

	sb.WriteString(m.renderTotals() + "\n")
	sb.WriteString(m.renderTrend() + "\n")
	sb.WriteString(m.renderModelMix() + "\n")
	sb.WriteString(m.renderProviders() + "\n")

	footer := "q quit · r refresh"
	if !m.lastUpdate.IsZero() {
		footer += " · updated " + m.lastUpdate.Format("15:04:05")
	}
	if m.view.Sample {
		footer += " · " + errorStyle.Render("sample data")
	}
	sb.WriteString(dimStyle.Render(footer))

	return sb.String()
}

func (m Model) renderTotals() string {
	row := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("tokens"), valueStyle.Render(FormatTokens(m.view.TotalTokens)),
		labelStyle.Render("in"), valueStyle.Render(FormatTokens(m.view.InputTokens)),
		labelStyle.Render("out"), valueStyle.Render(FormatTokens(m.view.OutputTokens)),
		labelStyle.Render("est. cost"), valueStyle.Render(FormatUSD(m.view.CostUSD)),
	)

	share := 0.0
	if m.view.TotalTokens > 0 {
		share = float64(m.view.InputTokens) / float64(m.view.TotalTokens) * 100
	}
	gauge := fmt.Sprintf("%s %s %s",
		labelStyle.Render("input share"),
		RenderInlineGauge(share, 14),
		dimStyle.Render(fmt.Sprintf("%.0f%%", share)))

	return panelStyle.Render(row + "\n" + gauge)
}

func (m Model) renderTrend() string {
	var lines []string
	lines = append(lines, headerStyle.Render("7-day trend"))

	claude := make([]float64, 0, len(m.view.WeeklyTrend))
	var days []string
	for _, d := range m.view.WeeklyTrend {
		claude = append(claude, float64(d.Claude))
		days = append(days, d.Day)
	}
	lines = append(lines, "  claude  "+RenderSparkline(claude, 28, providerColors["claude"]))

	if gemini := geminiSeries(m.view.WeeklyTrend); gemini != nil {
		lines = append(lines, "  gemini  "+RenderSparkline(gemini, 28, providerColors["gemini"]))
	}
	lines = append(lines, dimStyle.Render("          "+strings.Join(days, " ")))

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func geminiSeries(trend []aggregate.TrendDay) []float64 {
	var out []float64
	any := false
	for _, d := range trend {
		if d.Gemini == nil {
			out = append(out, 0)
			continue
		}
		any = true
		out = append(out, float64(*d.Gemini))
	}
	if !any {
		return nil
	}
	return out
}

func (m Model) renderModelMix() string {
	items := make([]chartItem, 0, len(m.view.ModelMix))
	colors := []lipgloss.Color{colorPeach, colorBlue, colorMauve, colorGreen, colorYellow}
	for i, share := range m.view.ModelMix {
		items = append(items, chartItem{
			Label: share.Name,
			Value: float64(share.Usage),
			Color: colors[i%len(colors)],
		})
	}

	body := headerStyle.Render("model mix") + "\n" + RenderHBarChart(items, 20, 18)
	return panelStyle.Render(body)
}

func (m Model) renderProviders() string {
	var lines []string
	lines = append(lines, headerStyle.Render("integrations"))

	connected := map[core.ProviderID]bool{}
	for _, p := range m.snap.Connected() {
		connected[p] = true
	}
	for _, p := range core.AllProviderIDs {
		mark := disconnectedStyle.Render("○ " + p.Slug())
		if connected[p] {
			mark = connectedStyle.Render("● " + p.Slug())
		}
		lines = append(lines, "  "+mark)
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the dashboard and blocks until the user quits.
func Run(st *store.Store, identity string, opts aggregate.Options) error {
	program := tea.NewProgram(NewModel(st, identity, opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
