package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kyleking/gh-makedispatch/internal/gitdefaults"
	"github.com/kyleking/gh-makedispatch/internal/render"
	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

func (a *App) newGenerateCmd() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a Makefile with a dispatch target per workflow",
		Long: `Generate a Makefile from every workflow_dispatch workflow in the workflows
directory. Inputs become make variables; a leading choice input produces one
target per option with that input pinned.`,
		Args: noArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runGenerate(toStdout)
		},
	}

	cmd.Flags().StringP("output", "o", "Makefile", "file to write, or - for stdout")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the Makefile instead of writing it")
	_ = a.v.BindPFlag("output", cmd.Flags().Lookup("output"))

	return cmd
}

func (a *App) runGenerate(toStdout bool) error {
	defs, err := workflow.DiscoverDir(a.cfg.WorkflowsDir)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		slog.Warn("No dispatchable workflows found", "dir", a.cfg.WorkflowsDir)
	}

	repo, haveRepo, err := a.resolveRepo()
	if err != nil {
		return err
	}
	var repoName string
	if haveRepo {
		repoName = gitdefaults.FullName(repo)
	} else {
		slog.Warn("Could not determine repository; set REPO when running make", "placeholder", render.RepoPlaceholder)
	}
	ref, _ := a.resolveRef()

	data, err := render.Generate(defs, repoName, ref)
	if err != nil {
		return err
	}

	if toStdout || a.cfg.Output == "-" {
		_, err := a.Stdout.Write(data)
		return err
	}

	if err := render.WriteFile(a.cfg.Output, data); err != nil {
		return &OutputError{Path: a.cfg.Output, Err: err}
	}

	targets := 0
	for _, def := range defs {
		targets += len(target.Expand(def))
	}
	if !a.logOpts.Quiet {
		styles := a.styles(a.Stderr)
		fmt.Fprintf(a.Stderr, "%s %s %s\n",
			styles.Success.Render("Wrote"),
			a.cfg.Output,
			styles.Muted.Render(fmt.Sprintf("(%d targets from %d workflows)", targets, len(defs))))
	}
	return nil
}
