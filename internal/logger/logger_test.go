// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbosity(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})

	Logger.Debug("hidden")
	Logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	buf.Reset()
	SetVerbose(true)
	Logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
