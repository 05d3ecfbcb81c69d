package main

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/di"
)

// globalOptions are the persistent flags shared by every command.
// Unset flags fall through to the environment and .env, like the server.
type globalOptions struct {
	DataPath string
	Store    string
	LogLevel string
	EnvFile  string
}

func (o *globalOptions) configArgs() []string {
	args := []string{"--env-file", o.EnvFile, "--log-level", o.LogLevel}
	if o.DataPath != "" {
		args = append(args, "--data-path", o.DataPath)
	}
	if o.Store != "" {
		args = append(args, "--store", o.Store)
	}
	return args
}

// app holds the container for the running command.
type app struct {
	opts     globalOptions
	injector *do.RootScope
}

// newRootCmd builds the command tree. Callers close the returned app after Execute.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "versectl",
		Short:         "Manage Versemark highlight categories from the command line.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.opts.configArgs())
			if err != nil {
				return err
			}
			a.injector = di.NewContainerWithConfig(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.opts.DataPath, "data-path", "", "Directory holding the database files")
	cmd.PersistentFlags().StringVar(&a.opts.Store, "store", "", "Record store backend: sqlite or badger")
	cmd.PersistentFlags().StringVar(&a.opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.opts.EnvFile, "env-file", ".env", "Path to .env file")

	addCategories(cmd, a)
	addColors(cmd, a)
	addPalette(cmd, a)
	return cmd, a
}

// invoke resolves a dependency from the command's container.
func invoke[T any](a *app) (T, error) {
	return do.Invoke[T](a.injector)
}

func (a *app) close() {
	if a.injector != nil {
		_ = a.injector.Shutdown()
		a.injector = nil
	}
}
