// Package markdown renders chat message content: file placeholders are
// rewritten into image references before the text reaches the markdown
// engine.
package markdown

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/chatmd"
	"github.com/fwojciec/chatmd/logging"
)

// Renderer rewrites message content with a chatmd.Rewriter and renders
// the result with a chatmd.Renderer.
type Renderer struct {
	engine   chatmd.Renderer
	rewriter chatmd.Rewriter
	logger   *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger that receives debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer. A nil rewriter renders content unchanged.
func New(engine chatmd.Renderer, rewriter chatmd.Rewriter, opts ...Option) *Renderer {
	r := &Renderer{engine: engine, rewriter: rewriter}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	return r
}

// Rewrite returns content as it will be handed to the engine.
func (r *Renderer) Rewrite(content string, files []chatmd.Attachment) string {
	if r.rewriter == nil {
		return content
	}
	return r.rewriter.Rewrite(content, files)
}

// Render writes the rendered form of content to w.
func (r *Renderer) Render(w io.Writer, content string, files []chatmd.Attachment) error {
	processed := r.Rewrite(content, files)
	r.logger.Debug("rendering message", "files", len(files), "rewritten", processed != content)
	if err := r.engine.Render(w, []byte(processed)); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// RenderMessage renders msg.Content with msg.Files.
func (r *Renderer) RenderMessage(w io.Writer, msg chatmd.Message) error {
	return r.Render(w, msg.Content, msg.Files)
}
