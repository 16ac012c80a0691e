package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/ui"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show dispatchable workflows, their inputs and make targets",
		Args:  noArgs,
		RunE: func(*cobra.Command, []string) error {
			defs, err := workflow.DiscoverDir(a.cfg.WorkflowsDir)
			if err != nil {
				return err
			}
			if len(defs) == 0 {
				fmt.Fprintf(a.Stdout, "No dispatchable workflows found in %s\n", a.cfg.WorkflowsDir)
				return nil
			}
			writeList(a.Stdout, a.styles(a.Stdout), defs)
			return nil
		},
	}
}

func writeList(w io.Writer, styles ui.Styles, defs []*workflow.Definition) {
	for i, def := range defs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", styles.Title.Render(def.Name), styles.Muted.Render("("+def.File+")"))

		for _, in := range def.Inputs {
			var notes []string
			if in.Required {
				notes = append(notes, "required")
			}
			if in.HasDefault() {
				notes = append(notes, fmt.Sprintf("default %q", *in.Default))
			}
			if in.IsChoice() {
				notes = append(notes, "one of "+strings.Join(in.Options, ", "))
			}

			line := fmt.Sprintf("  %-20s %-8s", target.VarName(in.Name), in.InputType())
			if len(notes) > 0 {
				line += " " + styles.Muted.Render(strings.Join(notes, "; "))
			}
			fmt.Fprintln(w, line)
		}

		fmt.Fprintf(w, "  %s %s\n", styles.Subtitle.Render("targets:"), strings.Join(target.Names(target.Expand(def)), " "))
	}
}
