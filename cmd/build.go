package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/packerci/cli"
	"github.com/grovetools/packerci/command"
	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/invocation"
	"github.com/grovetools/packerci/pkg/materialize"
	"github.com/grovetools/packerci/pkg/platform"
	"github.com/grovetools/packerci/pkg/publisher"
	"github.com/grovetools/packerci/pkg/resolver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addBuildFlags registers the flags shared by build and plan.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("job", "j", "", "Path to the job file")
	cmd.Flags().StringP("installation", "i", "", "Installation name, overriding the job file")
	cmd.Flags().StringP("workspace", "w", "", "Workspace directory (default: current directory)")
	cmd.Flags().Bool("debug", false, "Pass -debug to packer")
	cmd.Flags().StringArrayP("env", "e", nil, "Build environment entry KEY=VALUE (repeatable)")
	cmd.Flags().StringToString("tool-location", nil, "Node-specific installation home name=path")
}

// buildInputs turns flags and the job file into a publisher build.
func buildInputs(cmd *cobra.Command, v *viper.Viper) (publisher.Build, error) {
	var job config.Job
	if path := v.GetString("job"); path != "" {
		loaded, err := config.LoadJob(path)
		if err != nil {
			return publisher.Build{}, err
		}
		job = *loaded
	}
	if name := v.GetString("installation"); name != "" {
		job.Installation = name
	}
	if v.GetBool("debug") {
		job.UseDebug = true
	}
	job.SetDefaults()
	if err := job.Validate(); err != nil {
		return publisher.Build{}, err
	}

	workspace := v.GetString("workspace")
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return publisher.Build{}, fmt.Errorf("failed to get current directory: %w", err)
		}
		workspace = cwd
	}
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		return publisher.Build{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid workspace").
			WithDetail("workspace", workspace)
	}

	// --env and --tool-location have no environment form.
	entries, _ := cmd.Flags().GetStringArray("env")
	env := envvars.FromOS().
		Overlay(envvars.EnvVars{"WORKSPACE": workspace}).
		Overlay(envvars.FromList(entries))

	node := platform.LocalNode()
	node.ToolLocations, _ = cmd.Flags().GetStringToString("tool-location")

	return publisher.Build{
		Job:       job,
		Workspace: node.Path(workspace),
		Node:      node,
		Env:       env,
	}, nil
}

func newPublisher(store *config.Store, runner publisher.ProcessRunner) *publisher.Publisher {
	builder := invocation.NewBuilder(resolver.New(), materialize.NewOS())
	return publisher.New(store, builder, runner)
}

func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run packer build for a job",
		Long: `Run packer build for a job.

The job names a configured installation and says where the template comes
from. Variable files are written to the working directory before packer
starts and are left in place afterwards. Installation params are masked in
the logged command line.

Examples:
  # Build with a job file
  packerci build --job packer-job.yml

  # Use the installation's global template from another workspace
  packerci build -i packer-1.9 -w /srv/ci/workspace

  # Point an installation at a node-specific home
  packerci build -j job.yml --tool-location packer-1.9=/opt/packer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := cli.Settings(cmd)
			_, store, err := loadInstallations(cmd)
			if err != nil {
				return err
			}
			build, err := buildInputs(cmd, v)
			if err != nil {
				return err
			}
			build.Stdout = cmd.OutOrStdout()

			runner := command.NewRunner().WithTimeout(v.GetDuration("timeout"))
			result, err := newPublisher(store, runner).Perform(cmd.Context(), build)
			if err != nil {
				return err
			}

			t := cli.DefaultTheme
			fmt.Fprintf(cmd.ErrOrStderr(), "%s packer build finished (exit code %d)\n",
				t.Success.Render("✓"), result.ExitCode)
			return nil
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().Duration("timeout", 0, "Maximum time packer may run (0 means no limit)")
	return cmd
}
