package chatmd

// TransferMethod describes how an attachment reached the message.
type TransferMethod string

// Transfer methods.
const (
	TransferLocalFile TransferMethod = "local_file"
	TransferRemoteURL TransferMethod = "remote_url"
	TransferToolFile  TransferMethod = "tool_file"
)

// Attachment describes one uploaded or generated file associated with a
// rendered message. Attachments are read-only once constructed.
type Attachment struct {
	ID string
	// BelongsTo correlates the attachment with a placeholder identifier
	// embedded in the message text.
	BelongsTo      string
	Type           string
	Filename       string
	Extension      string
	MimeType       string
	Size           int64
	URL            string
	TransferMethod TransferMethod
	RemoteURL      string
	UploadFileID   string
}

// Usable reports whether the attachment carries a delivery URL.
func (a Attachment) Usable() bool { return a.URL != "" }

// IsRemote reports whether the attachment was delivered from a remote URL.
func (a Attachment) IsRemote() bool {
	return a.TransferMethod == TransferRemoteURL || a.RemoteURL != ""
}
