package bubbletea

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}
