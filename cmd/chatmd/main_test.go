package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/chatmd"
	"github.com/fwojciec/chatmd/imageurl"
	chatjson "github.com/fwojciec/chatmd/json"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, noEnv, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := parseConfig(nil, noEnv, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, formatANSI, cfg.format)
		assert.Equal(t, imageurl.DefaultUploadMarker, cfg.uploadMarker)
		assert.Equal(t, imageurl.DefaultLabel, cfg.label)
		assert.Equal(t, ".", cfg.root)
		assert.Empty(t, cfg.input)
	})

	t.Run("log level from environment", func(t *testing.T) {
		t.Parallel()
		getenv := func(k string) string {
			if k == "CHATMD_LOG_LEVEL" {
				return "debug"
			}
			return ""
		}
		cfg, err := parseConfig(nil, getenv, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.logLevel)

		cfg, err = parseConfig([]string{"--log-level", "warn"}, getenv, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.logLevel)
	})

	t.Run("repeatable files flag", func(t *testing.T) {
		t.Parallel()
		cfg, err := parseConfig([]string{"-f", "a/*.json", "--files", "b/**/*.json", "in.md"}, noEnv, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a/*.json", "b/**/*.json"}, cfg.filePatterns)
		assert.Equal(t, "in.md", cfg.input)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig([]string{"--format", "pdf"}, noEnv, &bytes.Buffer{})
		assert.ErrorIs(t, err, chatmd.ErrUnknownFormat)
	})

	t.Run("too many inputs", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig([]string{"a.md", "b.md"}, noEnv, &bytes.Buffer{})
		assert.ErrorIs(t, err, chatmd.ErrValidation)
	})

	t.Run("message and input are exclusive", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig([]string{"-m", "m.json", "a.md"}, noEnv, &bytes.Buffer{})
		assert.ErrorIs(t, err, chatmd.ErrValidation)
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		var stderr bytes.Buffer
		_, err := parseConfig([]string{"--help"}, noEnv, &stderr)
		assert.ErrorIs(t, err, pflag.ErrHelp)
		assert.Contains(t, stderr.String(), "Usage: chatmd")
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("markdown from stdin without files is unchanged", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "See [pic](/files/tools/abc.png)", "--format", "markdown")
		require.NoError(t, err)
		assert.Equal(t, "See [pic](/files/tools/abc.png)", out)
	})

	t.Run("message file rewrites placeholders", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "msg.json")
		writeFile(t, path, `{"answer":"See [pic](/files/tools/abc123.png)","message_files":[{"belongs_to":"x","url":"https://cdn.example/a.png"}]}`)
		out, err := runCLI(t, "", "--format", "markdown", "-m", path)
		require.NoError(t, err)
		assert.Equal(t, "See ![pic](https://cdn.example/a.png)", out)
	})

	t.Run("attachment globs feed the rewriter", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "files", "one.json"), `{"belongs_to":"x","url":"https://cdn.example/a.png"}`)
		input := filepath.Join(root, "answer.md")
		writeFile(t, input, "No refs here")
		out, err := runCLI(t, "", "--format", "markdown", "--root", root, "-f", "files/*.json", input)
		require.NoError(t, err)
		assert.Equal(t, "No refs here\n![图片附件](https://cdn.example/a.png)", out)
	})

	t.Run("by id resolution", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "msg.json")
		writeFile(t, path, `{"content":"[a](/files/tools/one.png) [b](/files/tools/two.png)","files":[{"belongs_to":"one","url":"u1"},{"belongs_to":"two","url":"u2"}]}`)
		out, err := runCLI(t, "", "--format", "markdown", "--by-id", "-m", path)
		require.NoError(t, err)
		assert.Equal(t, "![a](u1) ![b](u2)", out)
	})

	t.Run("html output", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "msg.json")
		writeFile(t, path, `{"content":"See [pic](sandbox:/files/tools/abc.png)","files":[{"belongs_to":"x","url":"https://cdn.example/a.png"}]}`)
		out, err := runCLI(t, "", "--format", "html", "--class", "chat", "-m", path)
		require.NoError(t, err)
		assert.Contains(t, out, `<div class="streamdown-markdown chat">`)
		assert.Contains(t, out, `src="https://cdn.example/a.png"`)
	})

	t.Run("ansi output", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "hello world", "--width", "40")
		require.NoError(t, err)
		assert.Contains(t, out, "hello world")
	})

	t.Run("out saves rewritten message", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		in := filepath.Join(dir, "msg.json")
		out := filepath.Join(dir, "saved", "msg.json")
		writeFile(t, in, `{"answer":"See [pic](/files/tools/abc123.png)","message_files":[{"belongs_to":"x","url":"https://cdn.example/a.png"}]}`)
		stdout, err := runCLI(t, "", "--format", "markdown", "-m", in, "--out", out)
		require.NoError(t, err)
		assert.Equal(t, "See ![pic](https://cdn.example/a.png)", stdout)

		saved, err := chatjson.LoadMessage(out)
		require.NoError(t, err)
		assert.Equal(t, "See ![pic](https://cdn.example/a.png)", saved.Content)
		require.Len(t, saved.Files, 1)
		assert.Equal(t, "https://cdn.example/a.png", saved.Files[0].URL)
	})

	t.Run("files without correlation key append empty image", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "msg.json")
		writeFile(t, path, `{"content":"No refs here","files":[{"url":"https://cdn.example/a.png"}]}`)
		out, err := runCLI(t, "", "--format", "markdown", "-m", path)
		require.NoError(t, err)
		assert.Equal(t, "No refs here\n![图片附件]()", out)
	})

	t.Run("invalid attachment file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "bad.json"), `{"transfer_method":"fax"}`)
		_, err := runCLI(t, "x", "--root", root, "-f", "*.json")
		assert.ErrorIs(t, err, chatmd.ErrValidation)
	})

	t.Run("missing input file", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "", filepath.Join(t.TempDir(), "missing.md"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
