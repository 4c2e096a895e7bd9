package cmd

import (
	"github.com/grovetools/packerci/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput represents the per-user paths used by packerci.
type PathsOutput struct {
	ConfigDir         string `json:"config_dir"`
	StateDir          string `json:"state_dir"`
	InstallationsFile string `json:"installations_file"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the per-user paths used by packerci",
		Long: `Print the per-user paths used by packerci as JSON.

- config_dir: holds the user installations file
- state_dir: default home for log files
- installations_file: used when no --config is given and the working
  directory has no packerci.yml

PACKERCI_HOME relocates all of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), PathsOutput{
				ConfigDir:         paths.ConfigDir(),
				StateDir:          paths.StateDir(),
				InstallationsFile: paths.InstallationsFile(),
			})
		},
	}
	return cmd
}
