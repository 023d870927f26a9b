package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter collects lines while the terminal is owned by a full-screen
// program and prints them once it is released. A line that was already
// collected is dropped, so a notice repeated on every reload prints once.
// Safe for concurrent use.
type DeferredWriter struct {
	mu      sync.Mutex
	partial bytes.Buffer
	lines   []string
	seen    map[string]struct{}
}

// Write collects complete lines. A trailing fragment is held until its
// newline arrives or Flush is called.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.partial.Write(p)
	for {
		i := bytes.IndexByte(d.partial.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(d.partial.Next(i + 1))
		d.add(line)
	}
	return len(p), nil
}

func (d *DeferredWriter) add(line string) {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[line]; ok {
		return
	}
	d.seen[line] = struct{}{}
	d.lines = append(d.lines, line)
}

// Len returns the number of distinct lines collected.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

// Flush writes the collected lines to w in the order first seen and resets
// the writer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.partial.Len() > 0 {
		d.add(d.partial.String() + "\n")
		d.partial.Reset()
	}

	var out bytes.Buffer
	for _, line := range d.lines {
		out.WriteString(line)
	}
	d.lines = nil
	d.seen = nil

	if out.Len() == 0 {
		return nil
	}
	_, err := out.WriteTo(w)
	return err
}
