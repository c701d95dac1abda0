// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/status-im/status-dev-cli/internal/logger"
)

// SockEnv overrides the watchman socket location.
const SockEnv = "WATCHMAN_SOCK"

// ErrWatchmanClosed indicates the daemon connection is gone
var ErrWatchmanClosed = errors.New("watchman connection closed")

// watchmanPDU covers every field read from responses and unilateral
// messages of the JSON protocol.
type watchmanPDU struct {
	Version         string          `json:"version"`
	Error           string          `json:"error"`
	Warning         string          `json:"warning"`
	Capabilities    map[string]bool `json:"capabilities"`
	Watch           string          `json:"watch"`
	RelativePath    string          `json:"relative_path"`
	Subscribe       string          `json:"subscribe"`
	Subscription    string          `json:"subscription"`
	Unilateral      bool            `json:"unilateral"`
	Log             string          `json:"log"`
	Root            string          `json:"root"`
	Files           []string        `json:"files"`
	IsFreshInstance bool            `json:"is_fresh_instance"`
	Canceled        bool            `json:"canceled"`
	StateEnter      string          `json:"state-enter"`
	StateLeave      string          `json:"state-leave"`
}

func (p *watchmanPDU) unilateral() bool {
	return p.Unilateral || p.Subscription != "" || p.Log != ""
}

// Watchman is a Service backed by the watchman daemon.
type Watchman struct {
	conn net.Conn
	enc  *json.Encoder

	// cmdMu serialises commands; watchman answers them in order.
	cmdMu     sync.Mutex
	responses chan watchmanPDU
	// abandoned counts commands whose caller gave up before the response
	// arrived. Their responses are still queued ahead of newer ones.
	abandoned int

	subsMu sync.Mutex
	subs   map[string]*watchmanSub

	done    chan struct{}
	readErr error
}

// DialWatchman connects to the local watchman daemon.
func DialWatchman(ctx context.Context) (*Watchman, error) {
	sock, err := watchmanSockname(ctx)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", sock)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to watchman at %s: %w", sock, err)
	}
	logger.Logger.Debug("Connected to watchman", "sock", sock)
	return NewWatchman(conn), nil
}

func watchmanSockname(ctx context.Context) (string, error) {
	if sock := os.Getenv(SockEnv); sock != "" {
		return sock, nil
	}

	out, err := exec.CommandContext(ctx, "watchman", "--output-encoding=json", "--no-pretty", "get-sockname").Output()
	if err != nil {
		return "", fmt.Errorf("failed to locate watchman socket (is watchman installed?): %w", err)
	}

	var resp struct {
		Sockname   string `json:"sockname"`
		UnixDomain string `json:"unix_domain"`
		Error      string `json:"error"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(out), &resp); err != nil {
		return "", fmt.Errorf("failed to parse watchman get-sockname output: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("watchman get-sockname: %s", resp.Error)
	}
	if resp.UnixDomain != "" {
		return resp.UnixDomain, nil
	}
	if resp.Sockname == "" {
		return "", errors.New("watchman get-sockname returned no socket")
	}
	return resp.Sockname, nil
}

type watchmanSub struct {
	ctx context.Context
	ch  chan Batch
}

// NewWatchman speaks the watchman JSON protocol over conn.
func NewWatchman(conn net.Conn) *Watchman {
	w := &Watchman{
		conn:      conn,
		enc:       json.NewEncoder(conn),
		responses: make(chan watchmanPDU, 1),
		subs:      make(map[string]*watchmanSub),
		done:      make(chan struct{}),
	}
	go w.readLoop()
	return w
}

func (w *Watchman) readLoop() {
	dec := json.NewDecoder(w.conn)
	defer func() {
		close(w.done)
		w.subsMu.Lock()
		for name, sub := range w.subs {
			close(sub.ch)
			delete(w.subs, name)
		}
		w.subsMu.Unlock()
	}()

	for {
		var p watchmanPDU
		if err := dec.Decode(&p); err != nil {
			w.readErr = err
			return
		}

		if !p.unilateral() {
			w.responses <- p
			continue
		}

		if p.Log != "" {
			logger.Logger.Debug("watchman log", "message", p.Log)
		}
		if p.Subscription == "" {
			continue
		}
		if p.StateEnter != "" || p.StateLeave != "" {
			logger.Logger.Debug("watchman state change",
				"subscription", p.Subscription,
				"enter", p.StateEnter,
				"leave", p.StateLeave,
			)
			continue
		}

		w.subsMu.Lock()
		sub, ok := w.subs[p.Subscription]
		if ok && p.Canceled {
			// Sent when the watched root goes away; the stream is over.
			close(sub.ch)
			delete(w.subs, p.Subscription)
			logger.Logger.Warn("watchman canceled the subscription", "subscription", p.Subscription, "root", p.Root)
		}
		w.subsMu.Unlock()
		if !ok || p.Canceled {
			continue
		}
		select {
		case sub.ch <- Batch{Root: p.Root, Files: p.Files, FreshInstance: p.IsFreshInstance}:
		case <-sub.ctx.Done():
		}
	}
}

func (w *Watchman) command(ctx context.Context, args ...any) (watchmanPDU, error) {
	w.cmdMu.Lock()
	defer w.cmdMu.Unlock()

	// Encoder terminates each value with a newline, which frames the PDU.
	if err := w.enc.Encode(args); err != nil {
		return watchmanPDU{}, fmt.Errorf("failed to send watchman command: %w", err)
	}

	for {
		select {
		case p := <-w.responses:
			if w.abandoned > 0 {
				w.abandoned--
				continue
			}
			if p.Error != "" {
				return p, fmt.Errorf("watchman: %s", p.Error)
			}
			return p, nil
		case <-w.done:
			if w.readErr != nil {
				return watchmanPDU{}, fmt.Errorf("%w: %v", ErrWatchmanClosed, w.readErr)
			}
			return watchmanPDU{}, ErrWatchmanClosed
		case <-ctx.Done():
			w.abandoned++
			return watchmanPDU{}, ctx.Err()
		}
	}
}

// CapabilityCheck negotiates the required capabilities.
func (w *Watchman) CapabilityCheck(ctx context.Context, required ...string) error {
	p, err := w.command(ctx, "version", map[string]any{
		"optional": []string{},
		"required": required,
	})
	if err != nil {
		return err
	}
	for _, c := range required {
		if !p.Capabilities[c] {
			return fmt.Errorf("%w: %s", ErrCapabilityMissing, c)
		}
	}
	logger.Logger.Debug("watchman capabilities ok", "version", p.Version)
	return nil
}

// WatchProject asks watchman to watch path, reusing an enclosing watch when
// one exists.
func (w *Watchman) WatchProject(ctx context.Context, path string) (Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	p, err := w.command(ctx, "watch-project", abs)
	if err != nil {
		return Project{}, err
	}
	return Project{Root: p.Watch, RelativePath: p.RelativePath, Warning: p.Warning}, nil
}

// Subscribe registers a persistent subscription on project.
func (w *Watchman) Subscribe(ctx context.Context, project Project, name string, sub Subscription) (<-chan Batch, error) {
	query := map[string]any{
		"expression": []any{"allof", []any{"match", sub.Pattern}},
		"fields":     sub.Fields,
	}
	if sub.RelativeRoot != "" {
		query["relative_root"] = sub.RelativeRoot
	}

	ws := &watchmanSub{ctx: ctx, ch: make(chan Batch, 16)}
	w.subsMu.Lock()
	select {
	case <-w.done:
		w.subsMu.Unlock()
		return nil, ErrWatchmanClosed
	default:
	}
	w.subs[name] = ws
	w.subsMu.Unlock()

	if _, err := w.command(ctx, "subscribe", project.Root, name, query); err != nil {
		w.subsMu.Lock()
		delete(w.subs, name)
		w.subsMu.Unlock()
		return nil, err
	}
	return ws.ch, nil
}

// Close drops the daemon connection, which ends all subscriptions.
func (w *Watchman) Close() error {
	return w.conn.Close()
}
