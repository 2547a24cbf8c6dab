package goldmark

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/fwojciec/chatmd"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ContainerClass is the class of the element wrapping rendered HTML.
const ContainerClass = "streamdown-markdown"

var _ chatmd.Renderer = (*HTML)(nil)

// HTML renders markdown to sanitized HTML using goldmark.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	class  string
}

// HTMLOption configures an HTML renderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	class     string
	unsafe    bool
	xhtml     bool
	highlight string
}

// WithClass adds a CSS class to the container element.
func WithClass(class string) HTMLOption {
	return func(c *htmlConfig) {
		c.class = class
	}
}

// WithUnsafe disables sanitizing of the rendered HTML.
func WithUnsafe() HTMLOption {
	return func(c *htmlConfig) {
		c.unsafe = true
	}
}

// WithXHTML renders void elements in XHTML form.
func WithXHTML() HTMLOption {
	return func(c *htmlConfig) {
		c.xhtml = true
	}
}

// WithHighlightStyle sets the chroma style used for fenced code blocks.
// Empty disables highlighting.
func WithHighlightStyle(style string) HTMLOption {
	return func(c *htmlConfig) {
		c.highlight = style
	}
}

// NewHTML creates an HTML renderer with GFM extensions, code highlighting
// and HTML sanitizing enabled.
func NewHTML(opts ...HTMLOption) *HTML {
	cfg := htmlConfig{highlight: "github"}
	for _, opt := range opts {
		opt(&cfg)
	}

	extensions := []goldmark.Extender{extension.GFM}
	if cfg.highlight != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(cfg.highlight),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	rendererOpts := []renderer.Option{
		html.WithHardWraps(),
		// Raw HTML is passed through to the sanitizer.
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(&blockRenderer{xhtml: cfg.xhtml}, 100)),
	}
	if cfg.xhtml {
		rendererOpts = append(rendererOpts, html.WithXHTML())
	}

	h := &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOpts...),
		),
		class: strings.TrimSpace(cfg.class),
	}
	if !cfg.unsafe {
		h.policy = sanitizer()
	}
	return h
}

// Render writes source as HTML wrapped in a container element.
func (h *HTML) Render(w io.Writer, source []byte) error {
	var buf bytes.Buffer
	if err := h.md.Convert(source, &buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	body := buf.Bytes()
	if h.policy != nil {
		body = h.policy.SanitizeBytes(body)
	}

	class := ContainerClass
	if h.class != "" {
		class += " " + h.class
	}
	var out bytes.Buffer
	out.WriteString(`<div class="`)
	out.Write(util.EscapeHTML([]byte(class)))
	out.WriteString(`">`)
	out.Write(body)
	out.WriteString("</div>\n")
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func sanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "span")
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	return p
}
