package cmd

import (
	"fmt"

	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/spf13/cobra"
)

func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [installations|job]",
		Short:     "Print the JSON Schema for a configuration file",
		Long:      "Print the JSON Schema for the installations file (default) or a job file.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"installations", "job"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "installations"
			if len(args) == 1 {
				kind = args[0]
			}

			var (
				data []byte
				err  error
			)
			switch kind {
			case "installations":
				data, err = config.GenerateInstallationsSchema()
			case "job":
				data, err = config.GenerateJobSchema()
			default:
				return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown schema %q, expected installations or job", kind))
			}
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
