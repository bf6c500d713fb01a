//
// logging_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	log.With("role", "P¹").Info("first message", "m", 2, Redacted("r"))
	log.Debug("not shown")

	out := buf.String()
	assert.Contains(t, out, "role=P¹")
	assert.Contains(t, out, "m=2")
	assert.Contains(t, out, "r=[redacted]")
	assert.False(t, strings.Contains(out, "not shown"))

	assert.True(t, log.Enabled(slog.LevelInfo))
	assert.False(t, log.Enabled(slog.LevelDebug))
}

func TestDiscard(t *testing.T) {
	log := OrDiscard(nil)
	log.Error("dropped")
	assert.False(t, log.Enabled(slog.LevelError))
}
