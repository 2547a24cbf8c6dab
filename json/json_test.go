package json_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/chatmd"
	chatjson "github.com/fwojciec/chatmd/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wireMessage = `{
  "answer": "See [pic](sandbox:/files/tools/0b86.png)",
  "message_files": [
    {
      "id": "f1",
      "type": "image",
      "belongs_to": "assistant",
      "url": "https://cdn.example/0b86.png",
      "transfer_method": "tool_file",
      "mime_type": "image/png",
      "filename": "0b86.png",
      "extension": ".png",
      "size": 1024,
      "remote_url": null,
      "upload_file_id": "u1"
    }
  ]
}`

func TestUnmarshalMessage(t *testing.T) {
	t.Parallel()

	t.Run("chat response wire format", func(t *testing.T) {
		t.Parallel()
		msg, err := chatjson.UnmarshalMessage([]byte(wireMessage))
		require.NoError(t, err)
		assert.Equal(t, "See [pic](sandbox:/files/tools/0b86.png)", msg.Content)
		require.Len(t, msg.Files, 1)
		assert.Equal(t, chatmd.Attachment{
			ID:             "f1",
			BelongsTo:      "assistant",
			Type:           "image",
			Filename:       "0b86.png",
			Extension:      ".png",
			MimeType:       "image/png",
			Size:           1024,
			URL:            "https://cdn.example/0b86.png",
			TransferMethod: chatmd.TransferToolFile,
			UploadFileID:   "u1",
		}, msg.Files[0])
	})

	t.Run("content wins over answer", func(t *testing.T) {
		t.Parallel()
		msg, err := chatjson.UnmarshalMessage([]byte(`{"content":"c","answer":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, "c", msg.Content)
		assert.Empty(t, msg.Files)
	})

	t.Run("files key is accepted", func(t *testing.T) {
		t.Parallel()
		msg, err := chatjson.UnmarshalMessage([]byte(`{"content":"c","files":[{"url":"u","belongs_to":"x"}]}`))
		require.NoError(t, err)
		require.Len(t, msg.Files, 1)
		assert.Equal(t, "u", msg.Files[0].URL)
	})

	t.Run("invalid transfer method", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalMessage([]byte(`{"content":"c","files":[{"transfer_method":"fax"}]}`))
		assert.ErrorIs(t, err, chatmd.ErrValidation)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalMessage([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestMarshalMessage_RoundTrip(t *testing.T) {
	t.Parallel()
	msg := chatmd.Message{
		Content: "hello",
		Files: []chatmd.Attachment{{
			BelongsTo:      "x",
			URL:            "https://cdn.example/a.png",
			TransferMethod: chatmd.TransferRemoteURL,
			RemoteURL:      "https://origin.example/a.png",
		}},
	}
	data, err := chatjson.MarshalMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"belongs_to": "x"`)
	got, err := chatjson.UnmarshalMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestUnmarshalAttachments(t *testing.T) {
	t.Parallel()

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		files, err := chatjson.UnmarshalAttachments([]byte(`[{"url":"a"},{"url":"b","belongs_to":"x"}]`))
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "x", files[1].BelongsTo)
	})

	t.Run("single object", func(t *testing.T) {
		t.Parallel()
		files, err := chatjson.UnmarshalAttachments([]byte("  {\"url\":\"a\"}\n"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "a", files[0].URL)
	})

	t.Run("validation error names index", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalAttachments([]byte(`[{"url":"a"},{"size":-1}]`))
		assert.ErrorIs(t, err, chatmd.ErrValidation)
		assert.Contains(t, err.Error(), "attachment 1")
	})
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	t.Run("message", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "msg.json")
		msg := chatmd.Message{Content: "hi", Files: []chatmd.Attachment{{URL: "u"}}}
		require.NoError(t, chatjson.Save(path, msg))
		_, err := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
		got, err := chatjson.LoadMessage(path)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	})

	t.Run("attachments file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "files.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"url":"u"}]`), 0o600))
		files, err := chatjson.LoadAttachments(path)
		require.NoError(t, err)
		assert.Equal(t, []chatmd.Attachment{{URL: "u"}}, files)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.LoadMessage(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
