package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/packerci/cli"
	"github.com/grovetools/packerci/pkg/invocation"
	"github.com/spf13/cobra"
)

// PlanOutput is the JSON form of a plan. Masked arguments are replaced.
type PlanOutput struct {
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	Executable string   `json:"executable"`
	Template   string   `json:"template"`
	Dir        string   `json:"dir"`
	TempFiles  []string `json:"temp_files"`
}

func newPlanOutput(plan *invocation.Plan) PlanOutput {
	args := make([]string, len(plan.Args))
	for i, a := range plan.Args {
		if a.Masked {
			args[i] = invocation.MaskedValue
		} else {
			args[i] = a.Value
		}
	}
	tempFiles := plan.TempFiles
	if tempFiles == nil {
		tempFiles = []string{}
	}
	return PlanOutput{
		Command:    plan.String(),
		Args:       args,
		Executable: plan.Executable(),
		Template:   plan.Template(),
		Dir:        plan.Dir,
		TempFiles:  tempFiles,
	}
}

func renderPlan(w io.Writer, plan *invocation.Plan) {
	t := cli.DefaultTheme
	label := lipgloss.NewStyle().Width(12).Foreground(t.Colors.Violet)

	fmt.Fprintln(w, t.Title.Render("packer plan"))
	fmt.Fprintf(w, "%s%s\n", label.Render("directory"), plan.Dir)
	fmt.Fprintf(w, "%s%s\n", label.Render("executable"), plan.Executable())
	fmt.Fprintf(w, "%s%s\n", label.Render("template"), plan.Template())
	for _, f := range plan.TempFiles {
		fmt.Fprintf(w, "%s%s\n", label.Render("temp file"), t.Muted.Render(f))
	}
	fmt.Fprintf(w, "\n%s\n", t.Code.Render(plan.String()))
}

func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the packer command a build would run",
		Long: `Show the packer command a build would run without launching it.

Temp files for inline templates and variables are still written, so the
printed paths can be inspected.

Examples:
  packerci plan --job packer-job.yml
  packerci plan -i packer-1.9 --json`,
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

			plan, err := newPublisher(store, nil).Plan(cmd.Context(), build)
			if err != nil {
				return err
			}

			if v.GetBool("json") {
				data, err := json.MarshalIndent(newPlanOutput(plan), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal plan to JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			renderPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	addBuildFlags(cmd)
	return cmd
}
