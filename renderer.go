package chatmd

import "io"

// Renderer converts markdown source into a display format.
type Renderer interface {
	Render(w io.Writer, source []byte) error
}

// Rewriter pre-processes markdown text using the message's attachments.
// Implementations must not fail: unresolvable input is returned unchanged.
type Rewriter interface {
	Rewrite(text string, files []Attachment) string
}
