package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vaultrag/internal/expander"
)

// ContextPort is the TUI-facing subset of the retriever.
type ContextPort interface {
	Retrieve(ctx context.Context, topics []string, k int) (string, error)
}

// ExpandPort is the TUI-facing subset of the expander. May be nil when
// no model collaborator is configured.
type ExpandPort interface {
	Expand(ctx context.Context, topics []string) (*expander.Result, error)
}

// Model is the Bubble Tea model for the query browser.
type Model struct {
	retriever ContextPort
	expander  ExpandPort
	input     textinput.Model
	viewport  viewport.Model
	summary   string
	status    string
	ready     bool
	expanding bool
}

type expandMsg struct {
	res *expander.Result
	err error
}

// New creates a new TUI model instance.
func New(retriever ContextPort, exp ExpandPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "topic1, topic2, ... (enter: retrieve, ctrl+e: expand)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		retriever: retriever,
		expander:  exp,
		input:     ti,
		viewport:  vp,
		summary:   summary,
		status:    "Index loaded. Type topics to search.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case expandMsg:
		m.expanding = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.viewport.SetContent(msg.res.Context)
		m.viewport.GotoTop()
		if msg.res.Degraded {
			m.status = "Degraded: " + msg.res.Note
		} else {
			m.status = fmt.Sprintf("Expanded to %d topics", len(msg.res.Topics))
		}
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			topics := parseTopics(m.input.Value())
			if len(topics) > 0 && !m.expanding {
				doc, err := m.retriever.Retrieve(context.Background(), topics, 0)
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.status = fmt.Sprintf("Context for %d topic(s)", len(topics))
					m.viewport.SetContent(doc)
					m.viewport.GotoTop()
				}
				return m, nil
			}
		case "ctrl+e":
			topics := parseTopics(m.input.Value())
			if m.expander == nil {
				m.status = "Expansion unavailable: no model configured"
				return m, nil
			}
			if len(topics) > 0 && !m.expanding {
				m.expanding = true
				m.status = "Expanding topics..."
				return m, expandCmd(m.expander, topics)
			}
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("vaultrag")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func expandCmd(exp ExpandPort, topics []string) tea.Cmd {
	return func() tea.Msg {
		res, err := exp.Expand(context.Background(), topics)
		return expandMsg{res: res, err: err}
	}
}

func parseTopics(value string) []string {
	var topics []string
	for _, part := range strings.Split(value, ",") {
		if t := strings.TrimSpace(part); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
