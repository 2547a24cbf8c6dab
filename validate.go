package chatmd

import "fmt"

// Validate checks an attachment decoded from an external source.
// An empty transfer method is accepted; upstream producers omit it for
// tool-generated files.
func (a Attachment) Validate() error {
	switch a.TransferMethod {
	case "", TransferLocalFile, TransferRemoteURL, TransferToolFile:
	default:
		return fmt.Errorf("unknown transfer method %q: %w", a.TransferMethod, ErrValidation)
	}
	if a.Size < 0 {
		return fmt.Errorf("size must be non-negative, got %d: %w", a.Size, ErrValidation)
	}
	return nil
}

// Validate checks every attachment of the message.
func (m Message) Validate() error {
	for i, f := range m.Files {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("file %d: %w", i, err)
		}
	}
	return nil
}
