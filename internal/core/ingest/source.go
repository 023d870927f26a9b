package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source is one named input of an upload batch. A source is read at most
// once.
type Source interface {
	Name() string
	Read(ctx context.Context) (string, error)
}

// Pathed is implemented by sources backed by a file on disk.
type Pathed interface {
	Path() string
}

type fileSource struct {
	path string
}

// FileSource reads the file at path. Its name is the base name, matching
// what a file picker reports.
func FileSource(path string) Source {
	return &fileSource{path: path}
}

func (f *fileSource) Name() string { return filepath.Base(f.path) }

func (f *fileSource) Path() string { return f.path }

func (f *fileSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type readerSource struct {
	name string
	r    io.Reader
	once sync.Once
}

// ReaderSource wraps a stream such as stdin.
func ReaderSource(name string, r io.Reader) Source {
	return &readerSource{name: name, r: r}
}

func (s *readerSource) Name() string { return s.name }

func (s *readerSource) Read(ctx context.Context) (string, error) {
	err := fmt.Errorf("source %s already consumed", s.name)
	var out string
	s.once.Do(func() {
		var sb strings.Builder
		_, err = io.Copy(&sb, readerWithContext{ctx: ctx, r: s.r})
		out = sb.String()
	})
	return out, err
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type stringSource struct {
	name, text string
}

// StringSource is an in-memory source.
func StringSource(name, text string) Source {
	return stringSource{name: name, text: text}
}

func (s stringSource) Name() string { return s.name }

func (s stringSource) Read(context.Context) (string, error) { return s.text, nil }

// Paths returns the on-disk paths of the file-backed sources in batch.
func Paths(batch []Source) []string {
	var out []string
	for _, s := range batch {
		if p, ok := s.(Pathed); ok {
			out = append(out, p.Path())
		}
	}
	return out
}
