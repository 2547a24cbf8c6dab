// Package mock provides test doubles for chatmd interfaces using function fields.
package mock

import (
	"io"

	"github.com/fwojciec/chatmd"
)

// Interface compliance checks.
var (
	_ chatmd.Renderer = (*Renderer)(nil)
	_ chatmd.Rewriter = (*Rewriter)(nil)
)

// Renderer is a test double for chatmd.Renderer.
// Set RenderFn before calling Render.
type Renderer struct {
	RenderFn func(w io.Writer, source []byte) error
}

// Render delegates to RenderFn.
func (r *Renderer) Render(w io.Writer, source []byte) error {
	return r.RenderFn(w, source)
}

// Rewriter is a test double for chatmd.Rewriter.
// Set RewriteFn before calling Rewrite.
type Rewriter struct {
	RewriteFn func(text string, files []chatmd.Attachment) string
}

// Rewrite delegates to RewriteFn.
func (r *Rewriter) Rewrite(text string, files []chatmd.Attachment) string {
	return r.RewriteFn(text, files)
}
