// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var level = new(slog.LevelVar)

// Logger is the structured logger used across the CLI. Diagnostics go to
// stderr so they never mix with command output.
var Logger = New(os.Stderr)

func init() {
	level.Set(slog.LevelWarn)
}

// New creates a text logger writing to w at the shared level.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose switches between debug and warn output.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// SetOutput redirects Logger to w.
func SetOutput(w io.Writer) {
	Logger = New(w)
}
