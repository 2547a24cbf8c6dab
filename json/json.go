// Package json reads and writes chat messages and their attachment
// descriptors in the upstream chat API's JSON wire format.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/chatmd"
)

// messageDTO is the JSON representation of a Message. Chat responses carry
// the text in "answer"; stored messages use "content".
type messageDTO struct {
	Content      string          `json:"content,omitempty"`
	Answer       string          `json:"answer,omitempty"`
	MessageFiles []attachmentDTO `json:"message_files,omitempty"`
	Files        []attachmentDTO `json:"files,omitempty"`
}

// attachmentDTO is the JSON representation of an Attachment.
type attachmentDTO struct {
	ID             string  `json:"id,omitempty"`
	BelongsTo      string  `json:"belongs_to,omitempty"`
	Type           string  `json:"type,omitempty"`
	Filename       string  `json:"filename,omitempty"`
	Extension      string  `json:"extension,omitempty"`
	MimeType       string  `json:"mime_type,omitempty"`
	Size           int64   `json:"size,omitempty"`
	URL            string  `json:"url,omitempty"`
	TransferMethod string  `json:"transfer_method,omitempty"`
	RemoteURL      *string `json:"remote_url,omitempty"`
	UploadFileID   string  `json:"upload_file_id,omitempty"`
}

// MarshalMessage serializes a Message.
func MarshalMessage(m chatmd.Message) ([]byte, error) {
	dto := messageDTO{Content: m.Content}
	for _, f := range m.Files {
		dto.MessageFiles = append(dto.MessageFiles, marshalAttachment(f))
	}
	return json.MarshalIndent(dto, "", "  ")
}

// UnmarshalMessage deserializes and validates a Message.
func UnmarshalMessage(data []byte) (chatmd.Message, error) {
	var dto messageDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return chatmd.Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	msg := chatmd.Message{Content: dto.Content}
	if msg.Content == "" {
		msg.Content = dto.Answer
	}
	for _, f := range append(dto.MessageFiles, dto.Files...) {
		msg.Files = append(msg.Files, unmarshalAttachment(f))
	}
	if err := msg.Validate(); err != nil {
		return chatmd.Message{}, err
	}
	return msg, nil
}

// UnmarshalAttachments deserializes and validates attachment descriptors
// from either a JSON array or a single JSON object.
func UnmarshalAttachments(data []byte) ([]chatmd.Attachment, error) {
	var dtos []attachmentDTO
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var dto attachmentDTO
		if err := json.Unmarshal(trimmed, &dto); err != nil {
			return nil, fmt.Errorf("unmarshal attachment: %w", err)
		}
		dtos = append(dtos, dto)
	} else if err := json.Unmarshal(trimmed, &dtos); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}
	files := make([]chatmd.Attachment, len(dtos))
	for i, dto := range dtos {
		files[i] = unmarshalAttachment(dto)
		if err := files[i].Validate(); err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
	}
	return files, nil
}

// Save writes a Message to a JSON file, creating parent directories as needed.
func Save(path string, m chatmd.Message) error {
	data, err := MarshalMessage(m)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadMessage reads a Message from a JSON file.
func LoadMessage(path string) (chatmd.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chatmd.Message{}, fmt.Errorf("read file: %w", err)
	}
	msg, err := UnmarshalMessage(data)
	if err != nil {
		return chatmd.Message{}, fmt.Errorf("%s: %w", path, err)
	}
	return msg, nil
}

// LoadAttachments reads attachment descriptors from a JSON file.
func LoadAttachments(path string) ([]chatmd.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	files, err := UnmarshalAttachments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return files, nil
}

func marshalAttachment(a chatmd.Attachment) attachmentDTO {
	dto := attachmentDTO{
		ID:             a.ID,
		BelongsTo:      a.BelongsTo,
		Type:           a.Type,
		Filename:       a.Filename,
		Extension:      a.Extension,
		MimeType:       a.MimeType,
		Size:           a.Size,
		URL:            a.URL,
		TransferMethod: string(a.TransferMethod),
		UploadFileID:   a.UploadFileID,
	}
	if a.RemoteURL != "" {
		dto.RemoteURL = &a.RemoteURL
	}
	return dto
}

func unmarshalAttachment(dto attachmentDTO) chatmd.Attachment {
	a := chatmd.Attachment{
		ID:             dto.ID,
		BelongsTo:      dto.BelongsTo,
		Type:           dto.Type,
		Filename:       dto.Filename,
		Extension:      dto.Extension,
		MimeType:       dto.MimeType,
		Size:           dto.Size,
		URL:            dto.URL,
		TransferMethod: chatmd.TransferMethod(dto.TransferMethod),
		UploadFileID:   dto.UploadFileID,
	}
	if dto.RemoteURL != nil {
		a.RemoteURL = *dto.RemoteURL
	}
	return a
}
