// Package iojson writes command results as indented JSON.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Error is written in place of a value that could not be encoded.
type Error struct {
	Message string `json:"message"`
	Cause   string `json:"cause"`
}

// Encode writes v to w as indented JSON followed by a newline. HTML
// characters are kept as is so diff text stays readable. When v cannot be
// encoded an Error object is written to ew and the encoding error returned.
func Encode(w, ew io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		_ = json.NewEncoder(ew).Encode(Error{Message: "unable to encode output", Cause: err.Error()})
		return fmt.Errorf("encode json: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
