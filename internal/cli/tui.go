package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/riskflow/pkg/pipeline"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

const (
	listWidth     = 34
	maxPathSource = 3
	maxPathsShown = 3
	barWidth      = 20
)

// =============================================================================
// InspectModel - Interactive risk browser
// =============================================================================

// analysis is what the inspector browses: the ranked report plus the graph
// it came from, for path queries.
type analysis struct {
	report *pipeline.Report
	graph  *riskgraph.Graph[string]
}

type analyzedMsg struct {
	result *analysis
	err    error
}

// InspectModel is the bubbletea model for browsing vertices by risk. The
// left pane lists vertices ranked by total risk; the right pane shows the
// selected vertex's contributions and most probable incoming paths.
type InspectModel struct {
	load func() (*analysis, error)

	spinner  spinner.Model
	viewport viewport.Model

	rows    []pipeline.VertexRisk
	graph   *riskgraph.Graph[string]
	name    string
	loading bool
	err     error

	Cursor int
	Offset int
	Height int
}

// newInspectModel creates an inspector that runs load on start.
func newInspectModel(name string, load func() (*analysis, error)) InspectModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(styleIconSpinner),
	)
	return InspectModel{
		load:     load,
		spinner:  sp,
		viewport: viewport.New(60, 15),
		name:     name,
		loading:  true,
		Height:   15,
	}
}

func (m InspectModel) Init() tea.Cmd {
	load := m.load
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := load()
		return analyzedMsg{result: res, err: err}
	})
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.rows = msg.result.report.Ranked()
		m.graph = msg.result.graph
		m.refreshDetail()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
		m.viewport.Width = max(msg.Width-listWidth-6, 20)
		m.viewport.Height = m.Height
		m.clampOffset()
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.clampOffset()
				m.refreshDetail()
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				m.clampOffset()
				m.refreshDetail()
			}
		case "pgup", "K":
			m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height/2)
		case "pgdown", "J":
			m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
		}
	}
	return m, nil
}

func (m *InspectModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *InspectModel) refreshDetail() {
	if len(m.rows) == 0 {
		m.viewport.SetContent(listDimStyle.Render("empty graph"))
		return
	}
	m.viewport.SetContent(vertexDetail(m.rows[m.Cursor], m.graph))
	m.viewport.GotoTop()
}

// Selected returns the vertex under the cursor.
func (m InspectModel) Selected() (pipeline.VertexRisk, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return pipeline.VertexRisk{}, false
	}
	return m.rows[m.Cursor], true
}

// Err returns the analysis error, if loading failed.
func (m InspectModel) Err() error {
	return m.err
}

func (m InspectModel) View() string {
	if m.loading {
		return m.spinner.View() + " " + StyleDim.Render("Analyzing "+m.name+"...") + "\n"
	}
	if m.err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  J/K scroll detail  q quit"))
	b.WriteString("\n\n")

	left := paneStyle.Width(listWidth).Render(m.listView())
	right := paneStyle.Render(m.viewport.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}

func (m InspectModel) listView() string {
	end := min(m.Offset+m.Height, len(m.rows))
	var lines []string
	for i := m.Offset; i < end; i++ {
		v := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		id := truncate(v.ID, listWidth-14)
		pct := riskStyle(v.Total).Render(fmt.Sprintf("%7s", fmtPercent(v.Total)))
		line := fmt.Sprintf("%s%-*s %s", cursor, listWidth-14, id, pct)
		if i == m.Cursor {
			lines = append(lines, listSelectedStyle.Render(line))
		} else {
			lines = append(lines, listNormalStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// Detail rendering
// =============================================================================

// vertexDetail describes one vertex: its own and total risk, every source
// contributing to the total, and the most probable paths from the largest
// upstream sources. g may be nil, in which case paths are omitted.
func vertexDetail(v pipeline.VertexRisk, g *riskgraph.Graph[string]) string {
	var b strings.Builder
	b.WriteString(StyleHighlight.Bold(true).Render(v.ID))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", keyLabel("own"), fmtPercent(v.Intrinsic))
	fmt.Fprintf(&b, "%s %s\n", keyLabel("total"), riskStyle(v.Total).Render(fmtPercent(v.Total)))

	if len(v.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleTitle.Render("Contributions"))
		b.WriteString("\n")
		for _, s := range v.Sources {
			id := s.ID
			if id == v.ID {
				id += " (self)"
			}
			fmt.Fprintf(&b, "  %-20s %s %s\n", truncate(id, 20), riskBar(s.Value), fmtPercent(s.Value))
		}
	}

	if g == nil {
		return b.String()
	}

	shown := 0
	for _, s := range v.Sources {
		if s.ID == v.ID || shown == maxPathSource {
			continue
		}
		paths, err := g.Paths(s.ID, v.ID)
		if err != nil || len(paths) == 0 {
			continue
		}
		if shown == 0 {
			b.WriteString("\n")
			b.WriteString(StyleTitle.Render("Paths"))
			b.WriteString("\n")
		}
		shown++
		for i, p := range paths {
			if i == maxPathsShown {
				b.WriteString(listDimStyle.Render(fmt.Sprintf("  … %d more from %s", len(paths)-i, s.ID)))
				b.WriteString("\n")
				break
			}
			fmt.Fprintf(&b, "  %s %s\n",
				strings.Join(p.Handles, " "+iconArrow+" "),
				listDimStyle.Render(fmt.Sprintf("%.4f", p.Prob)))
		}
	}
	return b.String()
}

func keyLabel(s string) string {
	return lipgloss.NewStyle().Foreground(colorGray).Width(6).Render(s)
}

// riskBar draws p as a fixed-width bar.
func riskBar(p float64) string {
	n := int(p*barWidth + 0.5)
	n = max(0, min(barWidth, n))
	return riskStyle(p).Render(strings.Repeat("█", n)) + listDimStyle.Render(strings.Repeat("░", barWidth-n))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
