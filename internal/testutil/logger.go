// Package testutil provides logging helpers for tests.
package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// its output only shows for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewRecordingLogger(t)
	return logger
}

// NewRecordingLogger is NewTestLogger that also keeps the message of every
// record it handles.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *Events) {
	t.Helper()
	events := &Events{}
	h := slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(recordingHandler{Handler: h, events: events}), events
}

// Events are the messages seen by a recording logger, in order. Safe for
// concurrent use.
type Events struct {
	mu   sync.Mutex
	msgs []string
}

func (e *Events) add(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

// Messages returns a copy of the recorded messages.
func (e *Events) Messages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.msgs)
}

// Count returns how often msg was logged.
func (e *Events) Count(msg string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

type recordingHandler struct {
	slog.Handler
	events *Events
}

func (h recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.events.add(r.Message)
	return h.Handler.Handle(ctx, r)
}

func (h recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return recordingHandler{Handler: h.Handler.WithAttrs(attrs), events: h.events}
}

func (h recordingHandler) WithGroup(name string) slog.Handler {
	return recordingHandler{Handler: h.Handler.WithGroup(name), events: h.events}
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
