//
// logging.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package logging implements a small structured logging facade over
// log/slog. Protocol roles log through the Logger interface and never
// include secret values in their log records.
package logging

import (
	"context"
	"log/slog"
)

const redacted = "[redacted]"

// Logger defines the logging functions the protocol roles use.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	Enabled(level slog.Level) bool
}

// New returns a Logger backed by the slog.Logger. A nil logger binds
// to slog.Default().
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{
		logger: logger,
	}
}

// Discard returns a Logger that drops all records.
func Discard() Logger {
	return &slogLogger{
		logger: slog.New(slog.DiscardHandler),
	}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
	}
}

func (l *slogLogger) Enabled(level slog.Level) bool {
	return l.logger.Handler().Enabled(context.Background(), level)
}

// Redacted returns an attribute that marks the key's value as
// intentionally removed from the record.
func Redacted(key string) slog.Attr {
	return slog.String(key, redacted)
}

// OrDiscard returns l or a discarding Logger if l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard()
	}
	return l
}
