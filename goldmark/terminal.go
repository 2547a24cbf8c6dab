// Package goldmark renders chat markdown to sanitized HTML and to
// ANSI-styled terminal output using goldmark for parsing.
package goldmark

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatmd"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow. Images are shown by alt text and
// URL on a line of their own.
func Render(source string, width int, theme chatmd.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	r := newTerminal(theme)
	return r.render([]byte(source), width)
}

var _ chatmd.Renderer = (*Terminal)(nil)

// Terminal renders markdown to ANSI-styled text.
type Terminal struct {
	Width int
	Theme chatmd.Theme
}

// NewTerminal creates a terminal renderer wrapping at width.
func NewTerminal(width int, theme chatmd.Theme) *Terminal {
	return &Terminal{Width: width, Theme: theme}
}

// Render writes the styled form of source followed by a newline.
func (t *Terminal) Render(w io.Writer, source []byte) error {
	out := Render(string(source), t.Width, t.Theme)
	if out == "" {
		return nil
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write terminal output: %w", err)
	}
	return nil
}

type terminal struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	image     lipgloss.Style
	underline lipgloss.Style
	err       lipgloss.Style
}

func newTerminal(theme chatmd.Theme) *terminal {
	return &terminal{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		image:     lipgloss.NewStyle().Foreground(ansiColor(theme.Image)),
		underline: lipgloss.NewStyle().Underline(true),
		err:       lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *terminal) render(source []byte, width int) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	r.walkBlock(doc, source, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *terminal) walkBlock(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, source, width, buf)
		if c.NextSibling() != nil && !isHTMLBlock(c) {
			buf.WriteString("\n")
		}
	}
}

func isHTMLBlock(n ast.Node) bool {
	_, ok := n.(*ast.HTMLBlock)
	return ok
}

func (r *terminal) renderBlock(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph:
		r.renderParagraph(n, source, width, buf)

	case *ast.Heading:
		styled := r.accent.Render(r.collectInline(n, source))
		buf.WriteString(lipgloss.NewStyle().Width(width).Render(styled))
		buf.WriteString("\n")

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(source)); lang != "" {
			buf.WriteString(r.muted.Render(lang))
			buf.WriteString("\n")
		}
		r.writeCode(n, source, buf)

	case *ast.CodeBlock:
		r.writeCode(n, source, buf)

	case *ast.List:
		r.renderList(n, source, width, buf, 0)

	case *east.Table:
		r.renderTable(n, source, buf)

	case *ast.ThematicBreak:
		buf.WriteString("---\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(source))
		}

	default:
		// Blockquotes and other unrecognized blocks: recurse into children.
		r.walkBlock(node, source, width, buf)
	}
}

// renderParagraph wraps inline content to width. A paragraph holding
// images is split so each image sits on its own line.
func (r *terminal) renderParagraph(n ast.Node, source []byte, width int, buf *bytes.Buffer) {
	wrap := lipgloss.NewStyle().Width(width)
	if !hasBlockContent(n, source) {
		buf.WriteString(wrap.Render(r.collectInline(n, source)))
		buf.WriteString("\n")
		return
	}
	var inline bytes.Buffer
	flush := func() {
		if s := strings.TrimSpace(inline.String()); s != "" {
			buf.WriteString(wrap.Render(s))
			buf.WriteString("\n")
		}
		inline.Reset()
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if img, ok := c.(*ast.Image); ok {
			flush()
			buf.WriteString(r.imageLine(img, source))
			buf.WriteString("\n")
			continue
		}
		r.renderInline(c, source, &inline)
	}
	flush()
}

func (r *terminal) imageLine(n *ast.Image, source []byte) string {
	alt := string(altText(n, source))
	dest := r.muted.Render("(" + string(n.Destination) + ")")
	if len(n.Destination) == 0 {
		dest = r.err.Render("(missing url)")
	}
	return r.image.Render("image:") + " " + r.underline.Render(alt) + " " + dest
}

func (r *terminal) writeCode(n ast.Node, source []byte, buf *bytes.Buffer) {
	gutter := r.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.WriteString(gutter + strings.TrimRight(string(line.Value(source)), "\n"))
		buf.WriteString("\n")
	}
}

// renderTable writes one line per row with cells separated by a muted bar.
func (r *terminal) renderTable(n *east.Table, source []byte, buf *bytes.Buffer) {
	sep := " " + r.muted.Render("|") + " "
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			content := r.collectInline(cell, source)
			if _, header := row.(*east.TableHeader); header {
				content = r.bold.Render(content)
			}
			cells = append(cells, content)
		}
		buf.WriteString(strings.Join(cells, sep))
		buf.WriteString("\n")
	}
}

func (r *terminal) renderList(node *ast.List, source []byte, width int, buf *bytes.Buffer, depth int) {
	itemNum := 0
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", node.Start+itemNum)
			itemNum++
		}

		var itemBuf bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				itemBuf.WriteString(r.collectInline(in, source))
			case *ast.List:
				if itemBuf.Len() > 0 {
					r.writeListItem(buf, indent, marker, itemBuf.String(), width)
					itemBuf.Reset()
				}
				r.renderList(in, source, width, buf, depth+1)
				marker = strings.Repeat(" ", len(marker))
			default:
				r.renderBlock(ic, source, width, &itemBuf)
			}
		}
		if itemBuf.Len() > 0 {
			r.writeListItem(buf, indent, marker, itemBuf.String(), width)
		}
	}
}

// writeListItem writes a list item with continuation lines aligned under
// the item text.
func (r *terminal) writeListItem(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	itemWidth := max(width-len(prefix), 10)
	lines := strings.Split(lipgloss.NewStyle().Width(itemWidth).Render(content), "\n")
	continuation := strings.Repeat(" ", len(prefix))
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(continuation + line + "\n")
		}
	}
}

// collectInline recursively collects styled inline text from a node's children.
func (r *terminal) collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source, &buf)
	}
	return buf.String()
}

func (r *terminal) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.collectInline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.collectInline(n, source)))

	case *east.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.collectInline(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.collectInline(n, source)))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.imageLine(n, source))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, source, buf)
		}
	}
}
