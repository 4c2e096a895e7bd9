package cmd

import (
	"context"

	"github.com/grovetools/packerci/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the packerci command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"packerci",
		"Run packer builds from CI with configured installations",
	)
	rootCmd.Long = `Run packer builds from CI with configured installations.

Installations are read from --config, PACKERCI_CONFIG, packerci.yml in the
working directory, or the user installations file, in that order. Every flag
can also be set through a PACKERCI_<FLAG> environment variable.`

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewInstallationsCmd())
	rootCmd.AddCommand(NewSchemaCmd())
	rootCmd.AddCommand(NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("packerci"))

	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	handler := cli.NewErrorHandler(cli.GetOptions(rootCmd).Verbose)
	handler.Out = rootCmd.ErrOrStderr()
	return cli.ExitCode(handler.Handle(err))
}
