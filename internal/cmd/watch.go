// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/status-im/status-dev-cli/internal/dapp"
	"github.com/status-im/status-dev-cli/internal/logger"
	"github.com/status-im/status-dev-cli/internal/watch"
)

func (a *app) watchDAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch-dapp [dappDir] [dapp]",
		Short: "Starts watching for DApp changes",
		Long: `Watches the DApp directory and refreshes the DApp in the connected
Status client after every change. When the directory has a build
subdirectory, only the build output is watched.

Runs until interrupted.

Example:
  status-dev-cli watch-dapp
  status-dev-cli watch-dapp ./my-dapp --watcher fsnotify`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := dapp.Payload(optionalArg(args, 1), a.workDir, a.cfg.DAppPort)
			if err != nil {
				return err
			}

			dir := optionalArg(args, 0)
			if dir == "" {
				dir = a.workDir
			}

			svc, err := a.deps.newWatchService(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("failed to start %s: %w", a.cfg.Watcher, err)
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.Logger.Debug("Failed to close watch service", "error", err)
				}
			}()

			adapter := watch.NewAdapter(svc, a.deps.newPoster(a.cfg), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return adapter.Run(cmd.Context(), dir, encoded)
		},
	}
}
