// Package cli implements the visitlog command-line client.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath    string
	ServerBaseURL string
	DatabasePath  string
	Offline       bool
	Verbose       bool
}

// NewRootCommand creates the root command for the visitlog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "visitlog",
		Short: "Offline-first repair visit log",
		Long: `A local-first client for the visit log service.

All records live in a local SQLite database and stay fully usable without
connectivity. When the server is reachable, changes made offline are pushed
and remote changes are pulled during a sync round.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVarP(&opts.ServerBaseURL, "server", "a", "", "base URL of the backend server")
	cmd.PersistentFlags().StringVar(&opts.DatabasePath, "db", "", "path to the local database file")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "never contact the server")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewVisitCommand(opts))
	cmd.AddCommand(NewBrandCommand(opts))

	return cmd
}
