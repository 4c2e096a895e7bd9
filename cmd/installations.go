package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/packerci/cli"
	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/pkg/invocation"
	"github.com/grovetools/packerci/pkg/paths"
	"github.com/grovetools/packerci/pkg/publisher"
	"github.com/spf13/cobra"
)

// InstallationSummary is the list/show form of an installation. Params are
// masked.
type InstallationSummary struct {
	Name      string   `json:"name"`
	Home      string   `json:"home"`
	Params    string   `json:"params,omitempty"`
	Mode      string   `json:"template_mode"`
	Template  string   `json:"template"`
	Variables []string `json:"variables"`
}

func summarize(inst config.Installation) InstallationSummary {
	s := InstallationSummary{
		Name:      inst.Name,
		Home:      inst.Home,
		Mode:      inst.Mode.String(),
		Template:  publisher.GlobalTemplateSummary(inst),
		Variables: []string{},
	}
	if strings.TrimSpace(inst.Params) != "" {
		s.Params = invocation.MaskedValue
	}
	for _, v := range inst.Variables {
		s.Variables = append(s.Variables, v.Name)
	}
	return s
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func NewInstallationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "installations",
		Aliases: []string{"inst"},
		Short:   "Manage configured packer installations",
	}
	cmd.AddCommand(newInstallationsListCmd())
	cmd.AddCommand(newInstallationsShowCmd())
	cmd.AddCommand(newInstallationsAddCmd())
	cmd.AddCommand(newInstallationsRemoveCmd())
	cmd.AddCommand(newInstallationsWatchCmd())
	return cmd
}

func newInstallationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadInstallations(cmd)
			if err != nil {
				return err
			}

			installations := store.All()
			if cli.GetOptions(cmd).JSONOutput {
				summaries := make([]InstallationSummary, 0, len(installations))
				for _, inst := range installations {
					summaries = append(summaries, summarize(inst))
				}
				return writeJSON(cmd.OutOrStdout(), summaries)
			}

			w := cmd.OutOrStdout()
			if len(installations) == 0 {
				fmt.Fprintln(w, cli.DefaultTheme.Muted.Render("No installations configured"))
				return nil
			}
			width := 0
			for _, inst := range installations {
				if len(inst.Name) > width {
					width = len(inst.Name)
				}
			}
			name := lipgloss.NewStyle().Bold(true).Foreground(cli.DefaultTheme.Colors.Blue).Width(width + 2)
			for _, inst := range installations {
				fmt.Fprintf(w, "%s%-5s %s\n", name.Render(inst.Name), inst.Mode, inst.Home)
			}
			return nil
		},
	}
}

func newInstallationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one installation and its global template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadInstallations(cmd)
			if err != nil {
				return err
			}
			inst, err := store.Lookup(args[0])
			if err != nil {
				return err
			}

			s := summarize(inst)
			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}

			t := cli.DefaultTheme
			w := cmd.OutOrStdout()
			label := lipgloss.NewStyle().Width(11).Foreground(t.Colors.Violet)
			fmt.Fprintln(w, t.Title.Render(s.Name))
			fmt.Fprintf(w, "%s%s\n", label.Render("home"), s.Home)
			if s.Params != "" {
				fmt.Fprintf(w, "%s%s\n", label.Render("params"), s.Params)
			}
			fmt.Fprintf(w, "%s%s\n", label.Render("mode"), s.Mode)
			if len(s.Variables) > 0 {
				fmt.Fprintf(w, "%s%s\n", label.Render("variables"), strings.Join(s.Variables, ", "))
			}
			fmt.Fprintf(w, "\n%s\n%s\n", t.Section.Render("template"), s.Template)
			return nil
		},
	}
}

// storeForUpdate loads the installations file for editing. A missing file
// yields an empty store targeting --config or the user installations file.
func storeForUpdate(cmd *cobra.Command) (string, *config.Store, error) {
	path, store, err := loadInstallations(cmd)
	if err == nil {
		return path, store, nil
	}
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		return "", nil, err
	}
	if explicit := cli.GetOptions(cmd).ConfigFile; explicit != "" {
		return explicit, config.NewStore(), nil
	}
	if err := paths.EnsureDirs(); err != nil {
		return "", nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return paths.InstallationsFile(), config.NewStore(), nil
}

func parseVariableFlags(values []string) ([]config.VariableEntry, error) {
	entries := make([]config.VariableEntry, 0, len(values))
	for _, value := range values {
		name, contents, ok := strings.Cut(value, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("variable must be NAME=CONTENTS: %s", value))
		}
		entries = append(entries, config.VariableEntry{Name: name, Contents: contents})
	}
	return entries, nil
}

func newInstallationsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an installation and save the installations file",
		Long: `Add an installation and save the installations file.

The whole installation list is rewritten; a watching process picks up the
change on its next reload.

Examples:
  packerci installations add packer-1.9 --home /opt/packer --template-text '{"builders":[]}'
  packerci installations add packer-file --home /opt/packer --template-mode file --template base.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := cli.Settings(cmd)
			path, store, err := storeForUpdate(cmd)
			if err != nil {
				return err
			}

			vars, _ := cmd.Flags().GetStringArray("var")
			variables, err := parseVariableFlags(vars)
			if err != nil {
				return err
			}
			mode, ok := config.ParseTemplateMode(v.GetString("template-mode"))
			if !ok {
				return errors.UnknownTemplateMode("installation", v.GetString("template-mode"))
			}
			inst := config.NewInstallation(args[0], v.GetString("home"), v.GetString("params"),
				config.TemplateSource{Mode: mode, File: v.GetString("template"), Text: v.GetString("template-text")},
				variables...)

			installations := append(store.All(), inst)
			if err := config.ValidateInstallations(installations); err != nil {
				return err
			}
			store.Replace(installations...)
			if err := store.Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added installation '%s' to %s\n",
				cli.DefaultTheme.Success.Render("✓"), inst.Name, path)
			return nil
		},
	}
	cmd.Flags().String("home", "", "Directory containing the packer executable")
	cmd.Flags().String("params", "", "Extra packer build parameters")
	cmd.Flags().String("template-mode", string(config.ModeText), "Global template mode: text or file")
	cmd.Flags().String("template", "", "Template path relative to the workspace (file mode)")
	cmd.Flags().String("template-text", "", "Inline template text (text mode)")
	cmd.Flags().StringArray("var", nil, "Global variable file NAME=CONTENTS (repeatable)")
	return cmd
}

func newInstallationsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an installation and save the installations file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, store, err := loadInstallations(cmd)
			if err != nil {
				return err
			}
			if _, err := store.Lookup(args[0]); err != nil {
				return err
			}

			var kept []config.Installation
			for _, inst := range store.All() {
				if inst.Name != args[0] {
					kept = append(kept, inst)
				}
			}
			store.Replace(kept...)
			if err := store.Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed installation '%s' from %s\n",
				cli.DefaultTheme.Success.Render("✓"), args[0], path)
			return nil
		},
	}
}

func newInstallationsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the installations file whenever it changes",
		Long: `Reload the installations file whenever it changes and print the
installation names after each reload. A file that fails to load is reported
and the previous list is kept. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, store, err := loadInstallations(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher, err := config.NewWatcher(path, store, config.DefaultDebounce)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to watch installations file").
					WithDetail("path", path)
			}
			w := cmd.OutOrStdout()
			watcher.OnReload(func(installations []config.Installation) {
				fmt.Fprintf(w, "%s %s\n", cli.DefaultTheme.Success.Render("reloaded"), strings.Join(store.Names(), ", "))
			})

			fmt.Fprintf(w, "Watching %s (%s)\n", path, strings.Join(store.Names(), ", "))
			watcher.Start(ctx)
			return nil
		},
	}
}
