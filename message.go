package chatmd

// Message is markdown content together with the files attached to it.
type Message struct {
	Content string
	Files   []Attachment
}
