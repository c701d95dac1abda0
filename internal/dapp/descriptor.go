// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package dapp builds the descriptor that identifies a DApp to the host
// client from the project's package.json manifest.
package dapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/status-im/status-dev-cli/internal/logger"
	"github.com/status-im/status-dev-cli/internal/payload"
)

// ManifestFile is the project manifest read from the DApp directory.
const ManifestFile = "package.json"

var (
	// ErrNoManifest indicates the directory has no package.json
	ErrNoManifest = errors.New("no " + ManifestFile + " found")
	// ErrNoManifestName indicates a manifest without a usable name field
	ErrNoManifestName = errors.New(ManifestFile + " has no name")
)

// Descriptor identifies a DApp to the host. Field order is part of the wire
// format: the encoded payload is compared byte for byte by the host.
type Descriptor struct {
	Name            string `json:"name"`
	WhisperIdentity string `json:"whisper-identity"`
	DAppURL         string `json:"dapp-url"`
}

type manifest struct {
	Name string `json:"name"`
}

// NewDescriptor derives the descriptor for a DApp served on localhost:port.
func NewDescriptor(name string, port int) Descriptor {
	return Descriptor{
		Name:            name,
		WhisperIdentity: "dapp-" + payload.Encode(name),
		DAppURL:         fmt.Sprintf("http://localhost:%d", port),
	}
}

// ReadManifest returns the name field of dir's package.json.
func ReadManifest(dir string) (string, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoManifest
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if m.Name == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoManifestName)
	}
	return m.Name, nil
}

// Load builds the descriptor for the project in dir.
func Load(dir string, port int) (Descriptor, error) {
	name, err := ReadManifest(dir)
	if err != nil {
		return Descriptor{}, err
	}
	return NewDescriptor(name, port), nil
}

// Payload returns the encoded payload for a command. A non-empty raw
// descriptor is sent as given; otherwise the descriptor is built from dir.
// A missing manifest is not fatal: an empty object is sent instead.
func Payload(raw, dir string, port int) (string, error) {
	if raw != "" {
		return payload.Encode(raw), nil
	}

	d, err := Load(dir, port)
	if errors.Is(err, ErrNoManifest) {
		logger.Logger.Warn("No manifest found, sending an empty DApp descriptor",
			"dir", dir,
			"manifest", ManifestFile,
		)
		return payload.EncodeJSON(struct{}{})
	}
	if err != nil {
		return "", err
	}

	logger.Logger.Debug("Built DApp descriptor", "name", d.Name, "dapp_url", d.DAppURL)
	return payload.EncodeJSON(d)
}
