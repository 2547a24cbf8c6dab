package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatmd"
)

// Styles maps a Theme to lipgloss styles for the pager chrome.
type Styles struct {
	Title lipgloss.Style
	Muted lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t chatmd.Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Muted: lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
