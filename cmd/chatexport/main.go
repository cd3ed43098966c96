// Command chatexport converts a saved Claude chat page into Markdown.
//
//	chatexport [-o out.md | -dir DIR] [-title T] [page.html]
//
// The page is read from stdin when no file is given. "-o -" writes to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/chatexport/internal/classify"
	"github.com/dgallion1/chatexport/internal/config"
	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/export"
	"github.com/dgallion1/chatexport/internal/store"
)

const (
	exitFailure = 1
	exitEmpty   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("chatexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", `output file ("-" for stdout)`)
	dir := fs.String("dir", cfg.StoreDir, "output directory when -o is not set")
	title := fs.String("title", "", "document title (defaults to the page title)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "chatexport: %v\n", err)
			return exitFailure
		}
		defer f.Close()
		in = f
	}

	root, err := dom.Parse(in)
	if err != nil {
		fmt.Fprintf(stderr, "chatexport: parse page: %v\n", err)
		return exitFailure
	}

	opts := classify.DefaultOptions()
	if len(cfg.ReasoningKeywords) > 0 {
		opts.ReasoningKeywords = cfg.ReasoningKeywords
	}
	doc, err := export.NewAssembler(log).ExportPage(root, export.Options{
		Title:        *title,
		DefaultTitle: cfg.DefaultTitle,
		Classify:     opts,
	})
	if errors.Is(err, export.ErrNoMessages) {
		fmt.Fprintln(stderr, "chatexport: no conversation found in page")
		return exitEmpty
	}
	if err != nil {
		fmt.Fprintf(stderr, "chatexport: %v\n", err)
		return exitFailure
	}

	if *out == "-" {
		_, _ = io.WriteString(stdout, doc.Markdown)
		return 0
	}

	path := *out
	if path == "" {
		path, err = store.NewFileStore(*dir).Save(context.Background(), store.Filename(doc.Title, doc.ExportedAt), []byte(doc.Markdown))
	} else {
		err = os.WriteFile(path, []byte(doc.Markdown), 0o644)
	}
	if err != nil {
		fmt.Fprintf(stderr, "chatexport: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "exported %d messages to %s\n", len(doc.Messages), path)
	return 0
}
