// Package ingest turns uploaded, dropped, piped or globbed inputs into the
// single diff blob the session works on.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrFileRead means a source in the batch could not be read.
	ErrFileRead = errors.New("failed to read file")
	// ErrUnsupportedFileType means no dropped file had a recognized extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrEmptyBatch means there was nothing to read.
	ErrEmptyBatch = errors.New("no files")
)

// DefaultExtensions are the file extensions accepted from a drop.
var DefaultExtensions = []string{".diff", ".patch", ".txt"}

// FileHeader prefixes each part of a multi-file blob.
const FileHeader = "# File: "

// FileReadError names the source that failed.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFileRead, e.Name, e.Err)
}

func (e *FileReadError) Is(target error) bool { return target == ErrFileRead }

func (e *FileReadError) Unwrap() error { return e.Err }

// Normalize reads every source concurrently and joins them in input order.
// A single source is returned verbatim. Several sources are each prefixed
// with "# File: <name>" and joined by a blank line. Any read failure aborts
// the whole batch.
func Normalize(ctx context.Context, batch []Source) (string, error) {
	if len(batch) == 0 {
		return "", ErrEmptyBatch
	}

	parts := make([]string, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range batch {
		g.Go(func() error {
			text, err := src.Read(gctx)
			if err != nil {
				return &FileReadError{Name: src.Name(), Err: err}
			}
			parts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(parts) == 1 {
		return parts[0], nil
	}

	for i, src := range batch {
		parts[i] = FileHeader + src.Name() + "\n" + parts[i]
	}
	return strings.Join(parts, "\n\n"), nil
}

// UnsupportedError lists the accepted extensions.
type UnsupportedError struct {
	Accepted []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: accepted %s", ErrUnsupportedFileType, strings.Join(e.Accepted, ", "))
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupportedFileType }

// FilterDropped keeps sources whose name ends in one of exts, compared
// case-insensitively. An empty exts uses DefaultExtensions.
func FilterDropped(batch []Source, exts []string) ([]Source, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var kept []Source
	for _, src := range batch {
		if HasExtension(src.Name(), exts) {
			kept = append(kept, src)
		}
	}
	if len(kept) == 0 {
		return nil, &UnsupportedError{Accepted: exts}
	}
	return kept, nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
