// Package imageurl rewrites placeholder and sandbox file references in
// markdown into image references pointing at real delivery URLs taken from
// a message's attachments.
package imageurl

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/fwojciec/chatmd"
	"github.com/fwojciec/chatmd/logging"
)

const (
	// DefaultUploadMarker identifies image URLs served by the upload host.
	DefaultUploadMarker = "https://upload.dify.ai/files/tools/"

	// DefaultLabel is the alt text of an appended fallback image.
	DefaultLabel = "图片附件"
)

// Resolve selects how placeholder references are mapped to URLs.
type Resolve int

const (
	// ResolveFirst uses one candidate URL for every placeholder: the URL of
	// the first attachment with a correlation key, or the first upload-host
	// image already present in the text.
	ResolveFirst Resolve = iota

	// ResolveByID maps each placeholder identifier to the URL of the
	// attachment whose correlation key equals it.
	ResolveByID
)

// Both shapes tolerate a trailing extension after the identifier and an
// optional leading "!" so existing image syntax is rewritten in place.
var (
	toolRef    = regexp.MustCompile(`(!?)\[([^\]]*)\]\(/files/tools/([^)]+?)(?:\.[^)]+)?\)`)
	sandboxRef = regexp.MustCompile(`(!?)\[([^\]]*)\]\(sandbox:/files/tools/([^)]+?)(?:\.[^)]+)?\)`)
	imageRef   = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
)

var _ chatmd.Rewriter = (*Rewriter)(nil)

// Rewriter rewrites file placeholders in markdown. It holds no mutable
// state and is safe for concurrent use.
type Rewriter struct {
	marker  string
	label   string
	resolve Resolve
	logger  *slog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithUploadMarker sets the substring that identifies upload-host image
// URLs when the candidate is extracted from the text itself.
func WithUploadMarker(marker string) Option {
	return func(r *Rewriter) {
		r.marker = marker
	}
}

// WithLabel sets the alt text of the appended fallback image.
func WithLabel(label string) Option {
	return func(r *Rewriter) {
		r.label = label
	}
}

// WithResolve sets the placeholder resolution strategy.
func WithResolve(resolve Resolve) Option {
	return func(r *Rewriter) {
		r.resolve = resolve
	}
}

// WithLogger sets the logger that receives debug diagnostics. A nil logger
// discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		r.logger = logger
	}
}

// New creates a Rewriter. Without options it resolves a single candidate
// URL and labels fallback images with DefaultLabel.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		marker: DefaultUploadMarker,
		label:  DefaultLabel,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	return r
}

// Rewrite returns text with every placeholder reference replaced by an
// image reference. References that cannot be resolved are left as they
// are. With ResolveFirst, when attachments were supplied but no reference
// was rewritten, one image labelled with the fallback label is appended,
// even if no attachment carried a correlation key and its URL is empty.
func (r *Rewriter) Rewrite(text string, files []chatmd.Attachment) string {
	if r.resolve == ResolveByID {
		return r.rewriteByID(text, files)
	}
	return r.rewriteFirst(text, files)
}

func (r *Rewriter) rewriteFirst(text string, files []chatmd.Attachment) string {
	candidate := r.CandidateURL(text, files)
	r.logger.Debug("resolved candidate url", "url", candidate, "files", len(files))

	rewritten := false
	image := func(alt, _ string) (string, bool) {
		if candidate == "" {
			return "", false
		}
		rewritten = true
		return candidate, true
	}
	result := replaceRefs(toolRef, text, image)
	result = replaceRefs(sandboxRef, result, image)

	if !rewritten && len(files) > 0 {
		r.logger.Debug("no placeholder found, appending image", "url", candidate)
		result += "\n![" + r.label + "](" + candidate + ")"
	}
	return result
}

func (r *Rewriter) rewriteByID(text string, files []chatmd.Attachment) string {
	if text == "" || len(files) == 0 {
		return text
	}
	urls := make(map[string]string, len(files))
	for _, f := range files {
		if f.BelongsTo != "" && f.Usable() {
			urls[f.BelongsTo] = f.URL
		}
	}
	image := func(_, id string) (string, bool) {
		url, ok := urls[id]
		if !ok {
			r.logger.Debug("no attachment for placeholder", "id", id)
		}
		return url, ok
	}
	result := replaceRefs(toolRef, text, image)
	return replaceRefs(sandboxRef, result, image)
}

// CandidateURL returns the single URL used to replace placeholders: the URL
// of the first attachment with a correlation key when files are present,
// otherwise the first upload-host image URL found in text. It returns ""
// when neither exists.
func (r *Rewriter) CandidateURL(text string, files []chatmd.Attachment) string {
	if len(files) > 0 {
		for _, f := range files {
			if f.BelongsTo != "" {
				return f.URL
			}
		}
		return ""
	}
	return ExtractImageURL(text, r.marker)
}

// ExtractImageURL returns the URL of the first markdown image in text whose
// URL contains marker, or "" if there is none.
func ExtractImageURL(text, marker string) string {
	for _, m := range imageRef.FindAllStringSubmatch(text, -1) {
		if strings.Contains(m[1], marker) {
			return m[1]
		}
	}
	return ""
}

// replaceRefs replaces every match of re in text. resolve receives the alt
// text and placeholder identifier and returns the replacement URL; when it
// reports false the match is kept verbatim.
func replaceRefs(re *regexp.Regexp, text string, resolve func(alt, id string) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		alt := text[m[4]:m[5]]
		id := text[m[6]:m[7]]
		b.WriteString(text[last:m[0]])
		if url, ok := resolve(alt, id); ok {
			b.WriteString("![" + alt + "](" + url + ")")
		} else {
			b.WriteString(text[m[0]:m[1]])
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
