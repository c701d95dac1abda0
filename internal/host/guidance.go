// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// GuideURL points to the setup guide shown when the host is unreachable.
const GuideURL = "https://github.com/status-im/status-dev-cli/blob/master/README.md"

// PrintGuidance writes the device connection checklist to w.
func PrintGuidance(w io.Writer) {
	color.New(color.FgRed).Fprintln(w, "Cannot connect to Status.")
	fmt.Fprintln(w, "1. Please, ensure that your device is connected to your computer;")
	fmt.Fprintln(w, "2. If it is connected, ensure that you're logged in and the debug mode is enabled.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check our guide for more information:")
	fmt.Fprintln(w, GuideURL)
}
