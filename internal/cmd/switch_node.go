// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/status-im/status-dev-cli/internal/host"
	"github.com/status-im/status-dev-cli/internal/payload"
)

type switchNodeRequest struct {
	URL string `json:"url"`
}

func (a *app) switchNodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch-node <url>",
		Short: "Switches the current RPC node",
		Long: `Switches the RPC node used by the connected Status client.

Example:
  status-dev-cli switch-node http://localhost:8545`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := payload.EncodeJSON(switchNodeRequest{URL: args[0]})
			if err != nil {
				return err
			}
			return a.post(cmd, host.PathSwitchNode, encoded, "RPC node has been switched successfully.")
		},
	}
}
