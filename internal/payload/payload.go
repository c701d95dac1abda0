// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package payload implements the hex wire encoding the Status host expects
// in the "encoded" field of every request body.
package payload

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Prefix starts every encoded payload.
const Prefix = "0x"

// ErrMissingPrefix indicates a payload that does not start with Prefix
var ErrMissingPrefix = errors.New("encoded payload must start with " + Prefix)

// Encode returns "0x" followed by two lowercase hex digits per byte of s.
func Encode(s string) string {
	return Prefix + hex.EncodeToString([]byte(s))
}

// Decode reverses Encode.
func Decode(encoded string) (string, error) {
	if !strings.HasPrefix(encoded, Prefix) {
		return "", ErrMissingPrefix
	}
	raw, err := hex.DecodeString(encoded[len(Prefix):])
	if err != nil {
		return "", fmt.Errorf("invalid encoded payload: %w", err)
	}
	return string(raw), nil
}

// Marshal serialises v as compact JSON without HTML escaping, which is how
// the host's own JSON serialiser renders descriptors.
func Marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// EncodeJSON marshals v and encodes the result.
func EncodeJSON(v any) (string, error) {
	s, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return Encode(s), nil
}
