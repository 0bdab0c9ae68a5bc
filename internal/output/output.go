// Package output writes rendered documents to disk or a stream.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/apiview/internal/view"
)

// Stdout is the OutFile value that selects Options.Stdout.
const Stdout = "-"

// Options controls where and how a document is written.
type Options struct {
	OutFile  string    // target JSON file; "" or "-" writes to Stdout
	TextFile string    // optional plain-text rendering written next to OutFile
	Stdout   io.Writer // used when OutFile is "-"; defaults to os.Stdout
	Force    bool      // overwrite existing files
	DryRun   bool      // plan only
	Pretty   bool      // indent JSON
}

// PlannedFile describes a file Write intends to create.
type PlannedFile struct {
	Path string
	Size int
	Mode os.FileMode
}

// Result lists what was (or, for a dry run, would be) written.
type Result struct {
	Planned []PlannedFile
}

// Write encodes doc as JSON and writes it per opts. Files are written
// atomically through a temp file and rename.
func Write(ctx context.Context, doc *view.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("output: nil document")
	}
	data, err := doc.JSON(opts.Pretty)
	if err != nil {
		return nil, fmt.Errorf("output: encode document: %w", err)
	}
	data = append(data, '\n')

	files := map[string][]byte{}
	toStdout := strings.TrimSpace(opts.OutFile) == "" || opts.OutFile == Stdout
	if !toStdout {
		files[opts.OutFile] = data
	}
	if opts.TextFile != "" {
		files[opts.TextFile] = []byte(Text(doc.Tokens))
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	planned := make([]PlannedFile, 0, len(paths)+1)
	if toStdout {
		planned = append(planned, PlannedFile{Path: Stdout, Size: len(data)})
	}
	for _, p := range paths {
		planned = append(planned, PlannedFile{Path: p, Size: len(files[p]), Mode: 0o644})
	}
	if opts.DryRun {
		return &Result{Planned: planned}, nil
	}

	if toStdout {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("output: write stdout: %w", err)
		}
	}
	if err := writeFiles(ctx, paths, files, opts.Force); err != nil {
		return nil, err
	}
	return &Result{Planned: planned}, nil
}

func writeFiles(ctx context.Context, paths []string, files map[string][]byte, force bool) error {
	// Pre-flight so nothing is written when any target would be refused.
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil && !force {
			return fmt.Errorf("output: %q already exists (use --force to overwrite)", p)
		}
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := WriteFileAtomic(p, files[p], 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteFileAtomic writes data to a sibling temp file and renames it over path.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405.000000000")
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write temp %s: %w", path, err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
