// Package session owns the viewer state for one program run: the current
// content, the layout, and the sequencing of renders, persistence and
// viewed-state reapplication.
package session

import (
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/viewed"
)

// Session is a read-only snapshot of the controller state.
type Session struct {
	Content string          `json:"content"`
	Layout  render.Layout   `json:"layout"`
	Locale  string          `json:"locale"`
	Viewed  []viewed.FileID `json:"viewed"`
}

// MessageKind distinguishes the non-output states of the results region.
type MessageKind int

const (
	MessagePlaceholder MessageKind = iota
	MessageError
)

func (k MessageKind) String() string {
	if k == MessageError {
		return "error"
	}
	return "placeholder"
}

// Display is the results region. Implementations escape message text
// before showing it.
type Display interface {
	// ShowOutput replaces the region with a fresh render.
	ShowOutput(out render.Output)
	// ShowMessage replaces the region with a placeholder or error text.
	ShowMessage(kind MessageKind, text string)
	// SetViewed applies the viewed mark of one rendered file.
	SetViewed(id viewed.FileID, viewed bool)
	// SetLayout updates the layout indicator.
	SetLayout(layout render.Layout)
}

type nopDisplay struct{}

func (nopDisplay) ShowOutput(render.Output)        {}
func (nopDisplay) ShowMessage(MessageKind, string) {}
func (nopDisplay) SetViewed(viewed.FileID, bool)   {}
func (nopDisplay) SetLayout(render.Layout)         {}
