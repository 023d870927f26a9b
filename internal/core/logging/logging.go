// Package logging attaches per-run fields to zerolog events through the
// context and names component loggers.
package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source labels where the current diff content came from.
type Source string

const (
	SourceRestore Source = "restore"
	SourceArgs    Source = "args"
	SourceInput   Source = "input" // typed or pasted text
	SourceDrop    Source = "drop"
	SourcePicker  Source = "picker"
	SourceWatch   Source = "watch"
)

type fieldsKey struct{}

type fields struct {
	runID  string
	source Source
}

func fromContext(ctx context.Context) fields {
	if ctx == nil {
		return fields{}
	}
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

// NewRunID returns a fresh identifier for one program run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID tags every event logged with ctx with runID.
func WithRunID(ctx context.Context, runID string) context.Context {
	f := fromContext(ctx)
	f.runID = runID
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithSource tags ctx with the content source. An existing source is
// replaced.
func WithSource(ctx context.Context, source Source) context.Context {
	f := fromContext(ctx)
	f.source = source
	return context.WithValue(ctx, fieldsKey{}, f)
}

// RunID returns the run id of ctx, or "".
func RunID(ctx context.Context) string {
	return fromContext(ctx).runID
}

// SourceOf returns the content source of ctx, or "".
func SourceOf(ctx context.Context) Source {
	return fromContext(ctx).source
}

// Component returns the global logger tagged with cmp=name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ContextHook copies the context fields onto events logged with Ctx.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	f := fromContext(e.GetCtx())
	if f.runID != "" {
		e.Str("run_id", f.runID)
	}
	if f.source != "" {
		e.Str("source", string(f.source))
	}
}
