package chatmd

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so output
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	Accent int // Headings, links
	Muted  int // URLs, code gutters, status bar
	Image  int // Image markers
	Error  int // Images without a URL
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Accent: 5,
		Muted:  8,
		Image:  6,
		Error:  1,
	}
}
