// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvIP, EnvDAppPort, EnvTimeout, EnvWatcher} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnvAndEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := "STATUS_DEV_CLI_IP=192.168.1.20\nSTATUS_DEV_CLI_DAPP_PORT=3000\nSTATUS_DEV_CLI_WATCHER=fsnotify\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644))

	t.Setenv(EnvIP, "10.0.0.5")
	t.Setenv(EnvTimeout, "3s")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.IP, "process environment overrides .env")
	assert.Equal(t, 3000, cfg.DAppPort)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, WatcherFSNotify, cfg.Watcher)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDAppPort, "eighty")
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")
	_, err = Load(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty ip", func(c *Config) { c.IP = "" }},
		{"port zero", func(c *Config) { c.DAppPort = 0 }},
		{"port too large", func(c *Config) { c.DAppPort = 70000 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown watcher", func(c *Config) { c.Watcher = "inotifywait" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestHostURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:5561/add-dapp", cfg.HostURL("/add-dapp"))

	cfg.IP = "192.168.0.7"
	assert.Equal(t, "http://192.168.0.7:5561/switch-node", cfg.HostURL("/switch-node"))

	cfg.IP = "::1"
	assert.Equal(t, "http://[::1]:5561/add-dapp", cfg.HostURL("/add-dapp"))
}
