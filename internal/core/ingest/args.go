package ingest

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// StdinName is the argument that selects standard input.
const StdinName = "-"

// ExpandArgs expands glob patterns in CLI arguments. Argument order is
// kept; matches within one pattern are sorted. A pattern with no matches is
// an error, as is a literal path that does not exist.
func ExpandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg == StdinName {
			out = append(out, arg)
			continue
		}

		if _, err := os.Stat(arg); err == nil {
			out = append(out, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, &FileReadError{Name: arg, Err: os.ErrNotExist}
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// SourcesFromArgs builds a batch from expanded arguments. "-" reads stdin.
func SourcesFromArgs(args []string, stdin io.Reader) []Source {
	batch := make([]Source, 0, len(args))
	for _, arg := range args {
		if arg == StdinName {
			batch = append(batch, ReaderSource("stdin", stdin))
			continue
		}
		batch = append(batch, FileSource(arg))
	}
	return batch
}
