// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusLogMsg delivers a slog record to the model for display in the
// status bar.
type statusLogMsg struct {
	Summary string
	Level   slog.Level
}

// statusLogFadeMsg clears the log message from the status bar and
// restores the help line.
type statusLogFadeMsg struct{}

// statusLogFadeDelay is how long a log record stays visible in the
// status bar.
const statusLogFadeDelay = 5 * time.Second

// StatusLogHandler is a slog.Handler that routes records into the
// running bubbletea program as status bar messages. Writing to stderr
// would corrupt the alt screen, so background goroutines log through
// this instead.
//
// Create the handler before the program, then call [SetProgram] once
// the tea.Program exists; records arriving earlier are dropped.
// Handlers derived with WithAttrs/WithGroup share the program pointer,
// so one SetProgram call covers all of them.
type StatusLogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	prefix  []string
}

// NewStatusLogHandler creates a handler delivering records at or above
// level to the program set later via [StatusLogHandler.SetProgram].
func NewStatusLogHandler(level slog.Level) *StatusLogHandler {
	return &StatusLogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the receiving program. Safe from any goroutine.
func (handler *StatusLogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *StatusLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as a one-line summary and sends it. A
// record arriving before SetProgram is silently dropped.
func (handler *StatusLogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}

	parts := append([]string(nil), handler.prefix...)
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	program.Send(statusLogMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler; the attributes become part of the
// summary prefix of every derived record.
func (handler *StatusLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.prefix = append([]string(nil), handler.prefix...)
	for _, attr := range attrs {
		derived.prefix = append(derived.prefix, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	return &derived
}

// WithGroup implements slog.Handler. Groups are flattened into the
// summary prefix; the status bar has no nested structure to show.
func (handler *StatusLogHandler) WithGroup(name string) slog.Handler {
	derived := *handler
	derived.prefix = append(append([]string(nil), handler.prefix...), name+":")
	return &derived
}
