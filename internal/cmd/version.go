// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

const rawVersion = "3.2.10"

// Version is the release of this build.
var Version = goversion.Must(goversion.NewVersion(rawVersion))

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of status-dev-cli",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status-dev-cli version %s\n", Version)
			if Version.Prerelease() != "" {
				fmt.Fprintln(out, "This is a pre-release build.")
			}
		},
	}
}
