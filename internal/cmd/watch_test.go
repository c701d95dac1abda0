// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/status-im/status-dev-cli/internal/config"
	"github.com/status-im/status-dev-cli/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService replays a fixed number of change batches.
type scriptedService struct {
	batches int
	capErr  error
	watched string
	closed  bool
}

func (s *scriptedService) CapabilityCheck(context.Context, ...string) error { return s.capErr }

func (s *scriptedService) WatchProject(_ context.Context, path string) (watch.Project, error) {
	s.watched = path
	return watch.Project{Root: path}, nil
}

func (s *scriptedService) Subscribe(context.Context, watch.Project, string, watch.Subscription) (<-chan watch.Batch, error) {
	ch := make(chan watch.Batch, s.batches)
	for i := 0; i < s.batches; i++ {
		ch <- watch.Batch{Files: []string{"index.html"}}
	}
	close(ch)
	return ch, nil
}

func (s *scriptedService) Close() error {
	s.closed = true
	return nil
}

func TestWatchDApp(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "foo")
	h := newFakeHost(t)
	svc := &scriptedService{batches: 2}

	stdout, _, err := execute(t, testDeps(dir, h.URL, svc), "watch-dapp")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Watching for changes in "+dir)
	assert.Equal(t, dir, svc.watched)
	assert.True(t, svc.closed)

	got := h.received()
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "/dapp-changed", r.path)
		assert.Equal(t,
			`{"name":"foo","whisper-identity":"dapp-0x666f6f","dapp-url":"http://localhost:8080"}`,
			r.decoded)
	}
}

func TestWatchDAppPrefersBuildDirectory(t *testing.T) {
	cwd := t.TempDir()
	proj := filepath.Join(cwd, "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(proj, "build"), 0o755))
	h := newFakeHost(t)
	svc := &scriptedService{}

	_, _, err := execute(t, testDeps(cwd, h.URL, svc), "watch-dapp", proj, `{"name":"raw"}`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(proj, "build"), svc.watched)
	assert.Empty(t, h.received())
}

func TestWatchDAppCapabilityFailure(t *testing.T) {
	h := newFakeHost(t)
	svc := &scriptedService{capErr: watch.ErrCapabilityMissing}

	_, _, err := execute(t, testDeps(t.TempDir(), h.URL, svc), "watch-dapp")
	assert.ErrorIs(t, err, watch.ErrCapabilityMissing)
	assert.Empty(t, svc.watched)
	assert.True(t, svc.closed)
}

func TestWatchDAppServiceUnavailable(t *testing.T) {
	d := testDeps(t.TempDir(), "", nil)
	d.newWatchService = func(context.Context, config.Config) (watch.Service, error) {
		return nil, errors.New("dial unix /tmp/watchman.sock: connect: no such file or directory")
	}

	_, _, err := execute(t, d, "watch-dapp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start watchman")
}
