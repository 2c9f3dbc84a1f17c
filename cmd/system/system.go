package system

import "github.com/spf13/cobra"

// NewSystemCommand groups operator tooling that does not serve traffic.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Operator tooling: connectivity checks and CLI docs",
	}
	cmd.AddCommand(NewGenDocsCommand(), NewCheckCommand())
	return cmd
}
