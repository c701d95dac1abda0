// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package watch forwards filesystem change batches for a DApp directory to
// the host client. Change detection itself is delegated to a Service.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/status-im/status-dev-cli/internal/host"
	"github.com/status-im/status-dev-cli/internal/logger"
)

const (
	// BuildDir is watched instead of the project root when present.
	BuildDir = "build"

	// SubscriptionName identifies the subscription on the watch service.
	SubscriptionName = "dapp-subscription"

	// DefaultPattern matches any file name containing a dot.
	DefaultPattern = "*.*"

	CapabilityRelativeRoot = "relative_root"
)

// ErrCapabilityMissing indicates the watch service lacks a required capability
var ErrCapabilityMissing = errors.New("watch service is missing a required capability")

// Project is a watched tree as reported by the service. RelativePath is the
// requested directory relative to Root, empty when they are the same.
type Project struct {
	Root         string
	RelativePath string
	Warning      string
}

// Subscription selects which changes are reported.
type Subscription struct {
	Pattern      string
	Fields       []string
	RelativeRoot string
}

// Batch is one change notification. Files are relative to the
// subscription's root.
type Batch struct {
	Root          string
	Files         []string
	FreshInstance bool
}

// Service is a filesystem watch backend.
type Service interface {
	CapabilityCheck(ctx context.Context, required ...string) error
	WatchProject(ctx context.Context, path string) (Project, error)
	// Subscribe streams change batches. The channel is closed when the
	// service ends the stream; callers stop reading once ctx is done.
	Subscribe(ctx context.Context, project Project, name string, sub Subscription) (<-chan Batch, error)
	Close() error
}

// Poster sends an encoded payload to a host endpoint.
type Poster interface {
	Post(ctx context.Context, path, encoded string) error
}

// ResolveRoot returns dir/build when it is a directory, otherwise dir. An
// empty dir means the working directory.
func ResolveRoot(dir string) string {
	if dir == "" {
		dir = "."
	}
	build := filepath.Join(dir, BuildDir)
	if info, err := os.Stat(build); err == nil && info.IsDir() {
		return build
	}
	return dir
}

// Adapter ties a watch subscription to host notifications.
type Adapter struct {
	svc    Service
	poster Poster

	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	inflight sync.WaitGroup
}

// NewAdapter creates an Adapter. Progress goes to out, connectivity
// guidance to errOut.
func NewAdapter(svc Service, poster Poster, out, errOut io.Writer) *Adapter {
	return &Adapter{
		svc:    svc,
		poster: poster,
		out:    out,
		errOut: errOut,
	}
}

// Run watches dir (or its build directory) and posts encoded to the
// dapp-changed endpoint once per change batch. The payload is fixed for the
// lifetime of the subscription. Run returns ctx.Err() once ctx is done, or
// nil when the service ends the stream.
func (a *Adapter) Run(ctx context.Context, dir, encoded string) error {
	root := ResolveRoot(dir)
	a.printf("Watching for changes in %s\n", root)

	if err := a.svc.CapabilityCheck(ctx, CapabilityRelativeRoot); err != nil {
		return fmt.Errorf("watch service capability check failed: %w", err)
	}

	project, err := a.svc.WatchProject(ctx, root)
	if err != nil {
		return fmt.Errorf("error initiating watch: %w", err)
	}
	if project.Warning != "" {
		a.printf("Warning: %s\n", project.Warning)
	}

	batches, err := a.svc.Subscribe(ctx, project, SubscriptionName, Subscription{
		Pattern:      DefaultPattern,
		Fields:       []string{"name"},
		RelativeRoot: project.RelativePath,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	a.printf("Subscription established\n")

	defer a.inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				logger.Logger.Warn("Watch service closed the subscription", "root", project.Root)
				return nil
			}
			logger.Logger.Debug("Change batch received",
				"root", batch.Root,
				"files", len(batch.Files),
				"fresh_instance", batch.FreshInstance,
			)
			a.notify(ctx, encoded)
		}
	}
}

// notify posts without blocking the batch loop.
func (a *Adapter) notify(ctx context.Context, encoded string) {
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		if err := a.poster.Post(ctx, host.PathDAppChanged, encoded); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Logger.Debug("Change notification failed", "error", err)
			a.mu.Lock()
			host.PrintGuidance(a.errOut)
			a.mu.Unlock()
		}
	}()
}

func (a *Adapter) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
