package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/packerci/cli"
	"github.com/grovetools/packerci/config"
	"github.com/spf13/cobra"
)

// loadInstallations resolves the installations file for cmd, loads it and
// installs its logging section. It returns the resolved path alongside the
// store so callers can save or watch it.
func loadInstallations(cmd *cobra.Command) (string, *config.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path, err := cli.ResolveConfigPath(cli.GetOptions(cmd).ConfigFile, cwd)
	if err != nil {
		cli.ConfigureLogging(cmd, nil)
		return "", nil, err
	}

	file, err := config.LoadInstallations(path)
	if err != nil {
		cli.ConfigureLogging(cmd, nil)
		return path, nil, err
	}
	cli.ConfigureLogging(cmd, file.Logging)

	cli.GetLogger().WithField("path", path).Debugf("Loaded %d installations", len(file.Installations))
	return path, config.NewStore(file.Installations...), nil
}
