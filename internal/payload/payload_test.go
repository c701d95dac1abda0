// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "0x"},
		{"ascii", "foo", "0x666f6f"},
		{"control char pads", "\n", "0x0a"},
		{"non-ascii encodes utf-8 bytes", "é", "0xc3a9"},
		{"json", `{"url":"http://x.y"}`, "0x7b2275726c223a22687474703a2f2f782e79227d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestEncodeLength(t *testing.T) {
	for _, s := range []string{"", "a", "status", "dapp-ü", strings.Repeat("x", 257)} {
		got := Encode(s)
		assert.True(t, strings.HasPrefix(got, "0x"))
		assert.Len(t, got, 2*len(s)+2, "input %q", s)
		assert.Equal(t, strings.ToLower(got), got)
	}
}

func TestDecode(t *testing.T) {
	s := `{"name":"ünïcode"}`
	got, err := Decode(Encode(s))
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = Decode("666f6f")
	assert.ErrorIs(t, err, ErrMissingPrefix)

	_, err = Decode("0xzz")
	assert.Error(t, err)
}

func TestMarshalKeepsHTML(t *testing.T) {
	got, err := Marshal(map[string]string{"url": "http://a/?b=1&c=<2>"})
	require.NoError(t, err)
	assert.Equal(t, `{"url":"http://a/?b=1&c=<2>"}`, got)
}

func TestEncodeJSON(t *testing.T) {
	got, err := EncodeJSON(struct {
		URL string `json:"url"`
	}{"http://x.y"})
	require.NoError(t, err)
	assert.Equal(t, Encode(`{"url":"http://x.y"}`), got)

	_, err = EncodeJSON(make(chan int))
	assert.Error(t, err)
}
