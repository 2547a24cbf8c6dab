// Command chatmd renders chat message markdown, rewriting tool and sandbox
// file placeholders into images from the message's attachments.
//
// Usage:
//
//	chatmd [flags] [file]
//	chatmd --message message.json --format html
//	chatmd --files 'out/**/*.json' --view answer.md
//
// Flags:
//
//	-m, --message string      Message JSON file with content and message_files
//	-f, --files stringArray   Glob of attachment JSON files (repeatable)
//	    --root string         Base directory for --files globs
//	    --format string       Output format: html|ansi|markdown (default ansi)
//	    --class string        Extra CSS class for the HTML container
//	    --by-id               Map placeholders by belongs_to instead of one URL
//	    --upload-marker string URL substring identifying upload-host images
//	    --label string        Alt text of the appended fallback image
//	-w, --width int           Wrap width for ansi output
//	    --view                Open the rendered message in a pager
//	-o, --out string          Also save the rewritten message as JSON
//	    --log-level string    Log level (default from CHATMD_LOG_LEVEL)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fwojciec/chatmd"
	bt "github.com/fwojciec/chatmd/bubbletea"
	"github.com/fwojciec/chatmd/fs"
	"github.com/fwojciec/chatmd/goldmark"
	"github.com/fwojciec/chatmd/imageurl"
	chatjson "github.com/fwojciec/chatmd/json"
	"github.com/fwojciec/chatmd/logging"
	"github.com/fwojciec/chatmd/markdown"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "chatmd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := parseConfig(args, getenv, stderr)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.logLevel, stderr)

	msg, title, err := loadMessage(cfg, stdin)
	if err != nil {
		return err
	}
	files, err := loadAttachments(cfg.root, cfg.filePatterns)
	if err != nil {
		return err
	}
	msg.Files = append(msg.Files, files...)
	logger.Debug("loaded message", "title", title, "bytes", len(msg.Content), "files", len(msg.Files))

	rewriter := imageurl.New(append(cfg.rewriterOptions(), imageurl.WithLogger(logger))...)

	if cfg.outPath != "" {
		saved := chatmd.Message{Content: rewriter.Rewrite(msg.Content, msg.Files), Files: msg.Files}
		if err := chatjson.Save(cfg.outPath, saved); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
		logger.Debug("saved rewritten message", "path", cfg.outPath)
	}

	if cfg.view {
		m := bt.New(title, rewriter.Rewrite(msg.Content, msg.Files), chatmd.DefaultTheme())
		if err := bt.Run(ctx, m); err != nil {
			return fmt.Errorf("pager: %w", err)
		}
		return nil
	}

	if cfg.format == formatMarkdown {
		_, err := io.WriteString(stdout, rewriter.Rewrite(msg.Content, msg.Files))
		return err
	}

	var engine chatmd.Renderer
	switch cfg.format {
	case formatHTML:
		var opts []goldmark.HTMLOption
		if cfg.class != "" {
			opts = append(opts, goldmark.WithClass(cfg.class))
		}
		engine = goldmark.NewHTML(opts...)
	default:
		engine = goldmark.NewTerminal(outputWidth(cfg.width, stdout), chatmd.DefaultTheme())
	}
	r := markdown.New(engine, rewriter, markdown.WithLogger(logger))
	return r.RenderMessage(stdout, msg)
}

// loadMessage reads the message from --message, the input file, or stdin.
// The returned title names the source.
func loadMessage(cfg config, stdin io.Reader) (chatmd.Message, string, error) {
	switch {
	case cfg.messagePath != "":
		msg, err := chatjson.LoadMessage(cfg.messagePath)
		if err != nil {
			return chatmd.Message{}, "", fmt.Errorf("load message: %w", err)
		}
		return msg, filepath.Base(cfg.messagePath), nil
	case cfg.input != "" && cfg.input != "-":
		data, err := os.ReadFile(cfg.input)
		if err != nil {
			return chatmd.Message{}, "", fmt.Errorf("read input: %w", err)
		}
		return chatmd.Message{Content: string(data)}, filepath.Base(cfg.input), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return chatmd.Message{}, "", fmt.Errorf("read stdin: %w", err)
		}
		return chatmd.Message{Content: string(data)}, "stdin", nil
	}
}

func loadAttachments(root string, patterns []string) ([]chatmd.Attachment, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	paths, err := fs.Glob(root, patterns)
	if err != nil {
		return nil, fmt.Errorf("find attachments: %w", err)
	}
	var files []chatmd.Attachment
	for _, path := range paths {
		loaded, err := chatjson.LoadAttachments(path)
		if err != nil {
			return nil, fmt.Errorf("load attachments: %w", err)
		}
		files = append(files, loaded...)
	}
	return files, nil
}

// outputWidth returns width, or the terminal width when width is zero and
// w is a terminal.
func outputWidth(width int, w io.Writer) int {
	if width > 0 {
		return width
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return goldmark.DefaultWidth
}
