// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/status-im/status-dev-cli/internal/cmd"
	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"success", nil, 0, ""},
		{"interrupted", fmt.Errorf("watch: %w", context.Canceled), cmd.InterruptExitCode, "Interrupted. Shutting down...\n"},
		{"unknown command", cmd.ErrUnknownCommand, 1, ""},
		{"failure", errors.New("boom"), 1, "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(func() error { return tt.err }, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOut, stderr.String())
		})
	}
}
