// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package config resolves the CLI configuration from defaults, a .env file,
// the process environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultIP       = "localhost"
	DefaultDAppPort = 8080
	DefaultTimeout  = 10 * time.Second

	// HostPort is where the host client listens; it is not configurable.
	HostPort = 5561

	WatcherWatchman = "watchman"
	WatcherFSNotify = "fsnotify"
)

// Environment variables read by Load.
const (
	EnvIP       = "STATUS_DEV_CLI_IP"
	EnvDAppPort = "STATUS_DEV_CLI_DAPP_PORT"
	EnvTimeout  = "STATUS_DEV_CLI_TIMEOUT"
	EnvWatcher  = "STATUS_DEV_CLI_WATCHER"
)

// Config is resolved once per invocation and read-only afterwards.
type Config struct {
	IP       string
	DAppPort int
	Timeout  time.Duration
	Watcher  string
	Verbose  bool
	Tracing  bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IP:       DefaultIP,
		DAppPort: DefaultDAppPort,
		Timeout:  DefaultTimeout,
		Watcher:  WatcherWatchman,
	}
}

// Load starts from Default and applies dir/.env, then the process
// environment. The .env file is optional and never exported to the process.
func Load(dir string) (Config, error) {
	cfg := Default()

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read .env: %w", err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvIP); ok {
		cfg.IP = v
	}
	if v, ok := lookup(EnvDAppPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvDAppPort, v, err)
		}
		cfg.DAppPort = port
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvWatcher); ok {
		cfg.Watcher = v
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.IP == "" {
		return errors.New("ip must not be empty")
	}
	if c.DAppPort < 1 || c.DAppPort > 65535 {
		return fmt.Errorf("invalid dapp port %d", c.DAppPort)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Watcher {
	case WatcherWatchman, WatcherFSNotify:
	default:
		return fmt.Errorf("unsupported watcher: %s (use '%s' or '%s')", c.Watcher, WatcherWatchman, WatcherFSNotify)
	}
	return nil
}

// HostURL returns the host client's URL for path.
func (c Config) HostURL(path string) string {
	return "http://" + net.JoinHostPort(c.IP, strconv.Itoa(HostPort)) + path
}
