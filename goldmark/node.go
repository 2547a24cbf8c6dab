package goldmark

import (
	"bytes"

	"github.com/fwojciec/chatmd"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// node adapts a goldmark inline node to chatmd.Node using the tag it
// renders as.
type node struct {
	n      ast.Node
	source []byte
}

var _ chatmd.Node = node{}

// children adapts the children of n.
func children(n ast.Node, source []byte) []chatmd.Node {
	var out []chatmd.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, node{n: c, source: source})
	}
	return out
}

// hasBlockContent reports whether n must not be rendered as a paragraph.
func hasBlockContent(n ast.Node, source []byte) bool {
	return chatmd.HasBlockContent(children(n, source))
}

func (a node) Tag() string {
	switch n := a.n.(type) {
	case *ast.Image:
		return "img"
	case *ast.Link, *ast.AutoLink:
		return "a"
	case *ast.Emphasis:
		if n.Level == 1 {
			return "em"
		}
		return "strong"
	case *ast.CodeSpan:
		return "code"
	case *east.Strikethrough:
		return "del"
	case *ast.RawHTML:
		tag, _ := rawTag(n.Segments, a.source)
		return tag
	}
	return ""
}

func (a node) Attr(name string) string {
	switch n := a.n.(type) {
	case *ast.Image:
		// Images are always emitted inside an image wrapper.
		if name == chatmd.AttrStreamdown {
			return chatmd.ImageWrapper
		}
	case *ast.RawHTML:
		_, attrs := rawTag(n.Segments, a.source)
		return attrs[name]
	}
	v, ok := a.n.AttributeString(name)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return ""
}

func (a node) Children() []chatmd.Node {
	return children(a.n, a.source)
}

// rawTag returns the name and attributes of the first start tag in an
// inline HTML fragment. Closing tags and comments yield "".
func rawTag(segments *text.Segments, source []byte) (string, map[string]string) {
	var raw bytes.Buffer
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		raw.Write(seg.Value(source))
	}
	z := html.NewTokenizer(&raw)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			attrs := make(map[string]string, len(tok.Attr))
			for _, attr := range tok.Attr {
				attrs[attr.Key] = attr.Val
			}
			return tok.Data, attrs
		}
	}
}
