// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/status-im/status-dev-cli/internal/logger"
)

// DefaultSettle is how long the fsnotify backend waits for more events
// before reporting a batch.
const DefaultSettle = 100 * time.Millisecond

// Directories skipped while walking, as watchman does by default.
var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// FSNotify is an in-process Service built on fsnotify, for machines
// without a watchman daemon.
type FSNotify struct {
	settle time.Duration

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
}

// NewFSNotify creates the backend. A non-positive settle uses DefaultSettle.
func NewFSNotify(settle time.Duration) *FSNotify {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &FSNotify{settle: settle}
}

// CapabilityCheck accepts relative_root only.
func (f *FSNotify) CapabilityCheck(_ context.Context, required ...string) error {
	for _, c := range required {
		if c != CapabilityRelativeRoot {
			return fmt.Errorf("%w: %s", ErrCapabilityMissing, c)
		}
	}
	return nil
}

// WatchProject validates path and uses it as its own root.
func (f *FSNotify) WatchProject(_ context.Context, p string) (Project, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return Project{}, fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Project{}, err
	}
	if !info.IsDir() {
		return Project{}, fmt.Errorf("%s is not a directory", abs)
	}
	return Project{Root: abs}, nil
}

// Subscribe watches the subscription root recursively.
func (f *FSNotify) Subscribe(ctx context.Context, project Project, name string, sub Subscription) (<-chan Batch, error) {
	root := filepath.Join(project.Root, sub.RelativeRoot)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addTree(w, root); err != nil {
		w.Close()
		return nil, err
	}

	f.mu.Lock()
	f.watchers = append(f.watchers, w)
	f.mu.Unlock()

	pattern := sub.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	out := make(chan Batch, 16)
	go f.loop(ctx, w, root, pattern, out)
	logger.Logger.Debug("fsnotify subscription established", "name", name, "root", root)
	return out, nil
}

func (f *FSNotify) loop(ctx context.Context, w *fsnotify.Watcher, root, pattern string, out chan<- Batch) {
	defer close(out)
	defer w.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(f.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w, event.Name); err != nil {
						logger.Logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if ok, _ := path.Match(pattern, filepath.Base(event.Name)); !ok {
				continue
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				rel = event.Name
			}
			if len(pending) == 0 {
				timer.Reset(f.settle)
			}
			pending[filepath.ToSlash(rel)] = struct{}{}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Logger.Warn("fsnotify error", "error", err)

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for name := range pending {
				files = append(files, name)
			}
			sort.Strings(files)
			pending = make(map[string]struct{})

			select {
			case out <- Batch{Root: root, Files: files}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && vcsDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// Close stops every subscription.
func (f *FSNotify) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.watchers {
		w.Close()
	}
	f.watchers = nil
	return nil
}
