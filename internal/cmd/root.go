// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/status-im/status-dev-cli/internal/config"
	"github.com/status-im/status-dev-cli/internal/host"
	"github.com/status-im/status-dev-cli/internal/logger"
	"github.com/status-im/status-dev-cli/internal/telemetry"
	"github.com/status-im/status-dev-cli/internal/watch"
)

// InterruptExitCode is returned when the user stops the CLI with a signal.
const InterruptExitCode = 130

// ErrUnknownCommand is returned after the unknown command message has been
// printed.
var ErrUnknownCommand = errors.New("unknown command")

// IsInterrupted reports whether err comes from a cancelled command context.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// deps are the collaborators a command run needs; tests replace them.
type deps struct {
	workDir         func() (string, error)
	newPoster       func(cfg config.Config) watch.Poster
	newWatchService func(ctx context.Context, cfg config.Config) (watch.Service, error)
}

func defaultDeps() deps {
	return deps{
		workDir: os.Getwd,
		newPoster: func(cfg config.Config) watch.Poster {
			return host.NewClient(cfg.HostURL(""), cfg.Timeout)
		},
		newWatchService: func(ctx context.Context, cfg config.Config) (watch.Service, error) {
			if cfg.Watcher == config.WatcherFSNotify {
				return watch.NewFSNotify(0), nil
			}
			return watch.DialWatchman(ctx)
		},
	}
}

// app holds per-invocation state shared by all commands.
type app struct {
	deps

	cfg     config.Config
	workDir string

	ip       string
	dappPort int
	timeout  time.Duration
	watcher  string
	verbose  bool
	tracing  bool

	shutdown telemetry.ShutdownFunc
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(defaultDeps())
	defer a.shutdownTelemetry()

	return a.rootCmd().ExecuteContext(ctx)
}

func newApp(d deps) *app {
	return &app{deps: d, cfg: config.Default()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "status-dev-cli",
		Short: "Status DApp development tool",
		Long: `status-dev-cli connects a local DApp project to a Status client running
in debug mode.

It can:
  - Add a DApp to the client's contacts and chats, or remove it
  - Watch the DApp's sources and refresh it in the client on every change
  - Switch the client's RPC node`,
		Version:           Version.String(),
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configure,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command %s. See --help for valid commands.\n", args[0])
			return ErrUnknownCommand
		},
	}
	root.SetVersionTemplate("status-dev-cli version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.ip, "ip", config.DefaultIP, "IP address of your device")
	flags.IntVar(&a.dappPort, "dapp-port", config.DefaultDAppPort, "Port of your local DApp server")
	flags.DurationVar(&a.timeout, "timeout", config.DefaultTimeout, "Timeout for each request to the device")
	flags.StringVar(&a.watcher, "watcher", config.WatcherWatchman, "File watcher backend (watchman, fsnotify)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&a.tracing, "tracing", false, "Export OpenTelemetry traces over OTLP/HTTP")

	root.AddCommand(
		a.addDAppCmd(),
		a.removeDAppCmd(),
		a.watchDAppCmd(),
		a.refreshDAppCmd(),
		a.switchNodeCmd(),
		newVersionCmd(),
	)
	return root
}

// configure resolves the configuration: defaults, .env, environment, then
// flags the user set explicitly.
func (a *app) configure(cmd *cobra.Command, _ []string) error {
	wd, err := a.deps.workDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	a.workDir = wd

	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("ip") {
		cfg.IP = a.ip
	}
	if flags.Changed("dapp-port") {
		cfg.DAppPort = a.dappPort
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("watcher") {
		cfg.Watcher = a.watcher
	}
	cfg.Verbose = a.verbose
	cfg.Tracing = a.tracing

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger.SetVerbose(cfg.Verbose)
	logger.Logger.Debug("Configuration resolved",
		"ip", cfg.IP,
		"dapp_port", cfg.DAppPort,
		"timeout", cfg.Timeout,
		"watcher", cfg.Watcher,
	)

	if telemetry.Enabled(cfg.Tracing) {
		shutdown, err := telemetry.Init(cmd.Context(), "status-dev-cli", Version.String())
		if err != nil {
			logger.Logger.Warn("Tracing disabled", "error", err)
			return nil
		}
		a.shutdown = shutdown
	}
	return nil
}

func (a *app) shutdownTelemetry() {
	if a.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		logger.Logger.Warn("Failed to flush traces", "error", err)
	}
}
