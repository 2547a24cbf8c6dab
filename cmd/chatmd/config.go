package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/chatmd"
	"github.com/fwojciec/chatmd/imageurl"
	"github.com/fwojciec/chatmd/logging"
	"github.com/spf13/pflag"
)

// Output formats.
const (
	formatHTML     = "html"
	formatANSI     = "ansi"
	formatMarkdown = "markdown"
)

type config struct {
	input        string
	messagePath  string
	filePatterns []string
	root         string
	format       string
	class        string
	byID         bool
	uploadMarker string
	label        string
	width        int
	view         bool
	outPath      string
	logLevel     string
}

// parseConfig parses command-line arguments. Environment values are passed
// in through getenv so tests control them.
func parseConfig(args []string, getenv func(string) string, stderr io.Writer) (config, error) {
	var cfg config
	flags := pflag.NewFlagSet("chatmd", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&cfg.messagePath, "message", "m", "", "Message JSON file with content and message_files")
	flags.StringArrayVarP(&cfg.filePatterns, "files", "f", nil, "Glob of attachment JSON files (repeatable, ** supported)")
	flags.StringVar(&cfg.root, "root", ".", "Base directory for --files globs")
	flags.StringVar(&cfg.format, "format", formatANSI, "Output format: html|ansi|markdown")
	flags.StringVar(&cfg.class, "class", "", "Extra CSS class for the HTML container")
	flags.BoolVar(&cfg.byID, "by-id", false, "Map each placeholder to the attachment with a matching belongs_to")
	flags.StringVar(&cfg.uploadMarker, "upload-marker", imageurl.DefaultUploadMarker, "URL substring identifying upload-host images")
	flags.StringVar(&cfg.label, "label", imageurl.DefaultLabel, "Alt text of the appended fallback image")
	flags.IntVarP(&cfg.width, "width", "w", 0, "Wrap width for ansi output (0 uses terminal width)")
	flags.BoolVar(&cfg.view, "view", false, "Open the rendered message in a pager")
	flags.StringVarP(&cfg.outPath, "out", "o", "", "Also save the rewritten message as JSON to this file")
	flags.StringVar(&cfg.logLevel, "log-level", getenv(logging.EnvLevel), "Log level: debug|info|warn|error")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: chatmd [flags] [file]")
		fmt.Fprintln(stderr, "\nRenders chat markdown, resolving file placeholders against attachments.")
		fmt.Fprintln(stderr, "Without --message or file, markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return config{}, err
	}
	switch rest := flags.Args(); len(rest) {
	case 0:
	case 1:
		cfg.input = rest[0]
	default:
		return config{}, fmt.Errorf("expected at most one input file, got %d: %w", len(rest), chatmd.ErrValidation)
	}
	switch cfg.format {
	case formatHTML, formatANSI, formatMarkdown:
	default:
		return config{}, fmt.Errorf("%q: %w", cfg.format, chatmd.ErrUnknownFormat)
	}
	if cfg.messagePath != "" && cfg.input != "" {
		return config{}, fmt.Errorf("--message and an input file are mutually exclusive: %w", chatmd.ErrValidation)
	}
	return cfg, nil
}

func (c config) rewriterOptions() []imageurl.Option {
	opts := []imageurl.Option{
		imageurl.WithUploadMarker(c.uploadMarker),
		imageurl.WithLabel(c.label),
	}
	if c.byID {
		opts = append(opts, imageurl.WithResolve(imageurl.ResolveByID))
	}
	return opts
}
