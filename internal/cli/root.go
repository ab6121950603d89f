package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand runs the HTTP server when invoked without a subcommand.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inbound",
		Short:         "WhatsApp-like webhook ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewSignCommand())

	return cmd
}
