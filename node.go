package chatmd

// Node is a rendered output node: an element with a tag name, attributes
// and children, or a text node with an empty tag.
type Node interface {
	Tag() string
	Attr(name string) string
	Children() []Node
}

// Element is a plain Node implementation.
type Element struct {
	Name  string
	Attrs map[string]string
	Nodes []Node
}

// Tag returns the element name.
func (e Element) Tag() string { return e.Name }

// Attr returns the named attribute, or "" when absent.
func (e Element) Attr(name string) string { return e.Attrs[name] }

// Children returns the child nodes.
func (e Element) Children() []Node { return e.Nodes }

var _ Node = Element{}

// AttrStreamdown marks wrapper elements emitted by the renderer.
const AttrStreamdown = "data-streamdown"

// ImageWrapper is the AttrStreamdown value of the element wrapping an image.
const ImageWrapper = "image-wrapper"

var blockTags = map[string]bool{
	"div": true, "pre": true, "table": true, "ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HasBlockContent reports whether any node, at any depth, is block-level
// content that may not be nested inside a paragraph: a block element, an
// image, or an image wrapper.
func HasBlockContent(nodes []Node) bool {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if IsBlock(n) || HasBlockContent(n.Children()) {
			return true
		}
	}
	return false
}

// IsBlock reports whether n itself is block-level content.
func IsBlock(n Node) bool {
	tag := n.Tag()
	return blockTags[tag] || tag == "img" || n.Attr(AttrStreamdown) == ImageWrapper
}
