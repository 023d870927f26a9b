package ingest

import (
	"net/url"
	"os"
	"strings"
)

// ParseDroppedPaths decides whether pasted text is a file drop. Terminals
// deliver dropped files as their paths, quoted or backslash-escaped, one or
// more per line, sometimes as file:// URIs. The paste is a drop only when
// every word names an existing regular file.
func ParseDroppedPaths(text string) ([]string, bool) {
	var paths []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		words, ok := splitWords(line)
		if !ok {
			return nil, false
		}
		for _, w := range words {
			p := fromFileURI(w)
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				return nil, false
			}
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		return nil, false
	}
	return paths, true
}

func fromFileURI(w string) string {
	if !strings.HasPrefix(w, "file://") {
		return w
	}
	u, err := url.Parse(w)
	if err != nil || u.Path == "" {
		return w
	}
	return u.Path
}

// splitWords splits a line the way a POSIX shell would for plain words,
// single quotes, double quotes and backslash escapes. Unbalanced quotes
// report false.
func splitWords(line string) ([]string, bool) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, false
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, true
}
