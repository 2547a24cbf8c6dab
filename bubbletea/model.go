package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatmd"
	"github.com/fwojciec/chatmd/goldmark"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is a scrollable pager over one rendered message.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	title   string
	content string
	theme   chatmd.Theme
	styles  Styles
	ready   bool
}

// New creates a pager showing markdown content under title. Content is
// rendered for the terminal width once the window size is known.
func New(title, content string, theme chatmd.Theme) Model {
	return Model{
		title:   title,
		content: content,
		theme:   theme,
		styles:  NewStyles(theme),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.Viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.Viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 1
	vpHeight := max(msg.Height-statusHeight-1, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	// Re-flow at the new width.
	m.Viewport.SetContent(goldmark.Render(m.content, msg.Width, m.theme))
	return m
}

// statusLine shows the title, truncated to fit, and the scroll position.
func (m Model) statusLine() string {
	pos := fmt.Sprintf(" %3.f%%", m.Viewport.ScrollPercent()*100)
	width := m.Viewport.Width - runewidth.StringWidth(pos)
	title := m.title
	if width > 0 && runewidth.StringWidth(title) > width {
		title = runewidth.Truncate(title, width, "…")
	}
	pad := max(width-runewidth.StringWidth(title), 0)
	return m.styles.Title.Render(title) + strings.Repeat(" ", pad) + m.styles.Muted.Render(pos)
}
