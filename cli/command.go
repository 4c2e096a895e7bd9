package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/logging"
	"github.com/grovetools/packerci/pkg/paths"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that stand in for flags, e.g.
// PACKERCI_CONFIG for --config.
const EnvPrefix = "PACKERCI"

// DefaultConfigNames are searched in the working directory when no config
// path is given.
var DefaultConfigNames = []string{"packerci.yml", "packerci.yaml", "packerci.toml"}

// CommandOptions holds common options for packerci commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard packerci flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the installations file")

	return cmd
}

// Settings returns a viper instance bound to cmd's flags. Flags set on the
// command line win, then PACKERCI_<FLAG> environment variables, then flag
// defaults. Dashes in flag names become underscores.
func Settings(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.InheritedFlags())
	_ = v.BindPFlags(cmd.LocalFlags())
	return v
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	v := Settings(cmd)
	return CommandOptions{
		ConfigFile: v.GetString("config"),
		Verbose:    v.GetBool("verbose"),
		JSONOutput: v.GetBool("json"),
	}
}

// ConfigureLogging installs the logging section of the installations file,
// forcing debug level when --verbose is set.
func ConfigureLogging(cmd *cobra.Command, cfg *logging.Config) {
	var effective logging.Config
	if cfg != nil {
		effective = *cfg
	}
	if GetOptions(cmd).Verbose {
		effective.Level = "debug"
	}
	logging.Configure(effective)
}

// GetLogger returns the CLI logger
func GetLogger() *logrus.Entry {
	return logging.NewLogger("packerci")
}

// ResolveConfigPath returns configFile when set, otherwise the first default
// config name found in dir, otherwise the user config file.
func ResolveConfigPath(configFile, dir string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	for _, name := range DefaultConfigNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	userConfig := paths.InstallationsFile()
	if _, err := os.Stat(userConfig); userConfig != "" && err == nil {
		return userConfig, nil
	}
	return "", errors.ConfigNotFound(filepath.Join(dir, DefaultConfigNames[0])).
		WithDetail("searched", append(append([]string{}, DefaultConfigNames...), userConfig))
}
