// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/status-im/status-dev-cli/internal/dapp"
	"github.com/status-im/status-dev-cli/internal/host"
	"github.com/status-im/status-dev-cli/internal/logger"
	"github.com/status-im/status-dev-cli/internal/payload"
)

func (a *app) addDAppCmd() *cobra.Command {
	return a.dappCmd(&cobra.Command{
		Use:   "add-dapp [dapp]",
		Short: "Adds a DApp to contacts and chats",
		Long: `Adds a DApp to the contacts and chats of the connected Status client.

Without arguments the DApp is described by the package.json in the current
directory. A raw JSON descriptor can be passed instead.

Example:
  status-dev-cli add-dapp --ip 192.168.1.20
  status-dev-cli add-dapp '{"whisper-identity": "dapp-test", "dapp-url": "http://localhost:8080", "name": "Test"}'`,
	}, host.PathAddDApp, "DApp has been added successfully.")
}

func (a *app) removeDAppCmd() *cobra.Command {
	return a.dappCmd(&cobra.Command{
		Use:   "remove-dapp [dapp]",
		Short: "Removes a debuggable DApp",
	}, host.PathRemoveDApp, "DApp has been removed successfully.")
}

func (a *app) refreshDAppCmd() *cobra.Command {
	return a.dappCmd(&cobra.Command{
		Use:   "refresh-dapp [dapp]",
		Short: "Refreshes a debuggable and currently visible DApp",
	}, host.PathDAppChanged, "DApp has been refreshed successfully.")
}

// dappCmd completes cmd to POST the DApp descriptor to path.
func (a *app) dappCmd(cmd *cobra.Command, path, success string) *cobra.Command {
	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		encoded, err := dapp.Payload(optionalArg(args, 0), a.workDir, a.cfg.DAppPort)
		if err != nil {
			return err
		}
		return a.post(cmd, path, encoded, success)
	}
	return cmd
}

// post sends encoded to the host. An unreachable host is reported with the
// connection guidance and does not fail the command.
func (a *app) post(cmd *cobra.Command, path, encoded, success string) error {
	if decoded, err := payload.Decode(encoded); err == nil {
		logger.Logger.Debug("Sending payload", "path", path, "payload", decoded)
	}

	client := a.deps.newPoster(a.cfg)
	if err := client.Post(cmd.Context(), path, encoded); err != nil {
		if ctxErr := cmd.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Logger.Debug("Request failed", "path", path, "error", err)
		host.PrintGuidance(cmd.ErrOrStderr())
		return nil
	}

	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), success)
	return nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
