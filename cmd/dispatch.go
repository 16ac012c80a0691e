package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyleking/gh-makedispatch/internal/dispatch"
	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/ui/panes"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

type dispatchFlags struct {
	workflow string
	args     []string
	mode     string
	copy     bool
	pick     bool
}

func (a *App) newDispatchCmd() *cobra.Command {
	var f dispatchFlags

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch one workflow, or print the equivalent curl or make command",
		Long: `Dispatch a single workflow_dispatch workflow.

Without --workflow the workflows directory must hold exactly one .yml or
.yaml file, whatever its triggers. --pick offers only the files that have a
workflow_dispatch trigger.

The curl and make modes print a command instead of calling the API; the
printed curl command reads the token from $GITHUB_TOKEN. The execute mode
sends the request and needs a token from --token, GHA_TOKEN, GITHUB_TOKEN,
GH_TOKEN or a gh CLI login.`,
		Example: `  gha dispatch --workflow deploy --arg environment=staging --arg version=1.2.3
  gha dispatch --mode execute --arg notes=@CHANGELOG.md
  gha dispatch --pick --mode make --copy`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDispatch(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.workflow, "workflow", "w", "", "workflow file or name (default: the only workflow in the workflows directory)")
	flags.StringArrayVarP(&f.args, "arg", "a", nil, "workflow input as NAME=VALUE or NAME=@FILE (repeatable)")
	flags.StringVarP(&f.mode, "mode", "m", dispatch.CurlText{}.String(), "one of "+dispatch.ModeNames())
	flags.BoolVar(&f.copy, "copy", false, "also copy the printed command to the clipboard")
	flags.BoolVar(&f.pick, "pick", false, "choose the workflow interactively")
	flags.String("token", "", "GitHub token for execute mode")
	_ = a.v.BindPFlag("token", flags.Lookup("token"))

	cmd.MarkFlagsMutuallyExclusive("workflow", "pick")

	return cmd
}

func (a *App) runDispatch(cmd *cobra.Command, f dispatchFlags) error {
	mode, err := dispatch.ParseMode(f.mode)
	if err != nil {
		return &UsageError{Err: err}
	}

	repo, ok, err := a.resolveRepo()
	if err != nil {
		return err
	}
	if !ok {
		return usageErrorf("could not determine the repository from git; pass --repo OWNER/REPO")
	}

	dir := a.cfg.WorkflowsDir
	wf, err := a.chooseWorkflow(dir, f)
	if err != nil {
		return err
	}

	ref, ok := a.resolveRef()
	if !ok {
		return usageErrorf("could not determine the ref from git; pass --ref")
	}

	inputs, err := dispatch.ParseArgs(f.args, a.ReadFile)
	if err != nil {
		return err
	}

	def, err := a.localDefinition(dir, wf)
	if err != nil {
		return err
	}
	if def != nil {
		checkInputs(def, inputs)
	}

	req := dispatch.Request{
		Repo:       repo,
		Workflow:   wf,
		Definition: def,
		Ref:        ref,
		Inputs:     inputs,
	}

	var dispatcher github.Dispatcher
	if _, isExecute := mode.(dispatch.Execute); isExecute {
		if f.copy {
			slog.Warn("--copy has no effect in execute mode")
		}
		dispatcher, err = a.dispatcher(repo.Host)
		if err != nil {
			return err
		}
	} else if f.copy {
		text, _, err := dispatch.Text(mode, req)
		if err != nil {
			return err
		}
		if err := a.Copy(text); err != nil {
			slog.Warn("Could not copy to clipboard", "error", err)
		} else {
			slog.Info("Copied command to clipboard", "mode", mode.String())
		}
	}

	return dispatch.Run(cmd.Context(), mode, req, a.Stdout, dispatcher)
}

// chooseWorkflow resolves --workflow, runs the picker, or falls back to the
// only workflow file present.
func (a *App) chooseWorkflow(dir string, f dispatchFlags) (string, error) {
	switch {
	case f.workflow != "":
		wf, err := workflow.Resolve(dir, f.workflow)
		if err != nil {
			return "", &UsageError{Err: err}
		}
		return wf, nil

	case f.pick:
		if !a.Interactive() {
			return "", usageErrorf("--pick needs an interactive terminal")
		}
		defs, err := workflow.DiscoverDir(dir)
		if err != nil {
			return "", err
		}
		if len(defs) == 0 {
			return "", &UsageError{Err: fmt.Errorf("%w in %s", workflow.ErrNoWorkflows, dir)}
		}
		items := make([]panes.PickerItem, len(defs))
		for i, def := range defs {
			items[i] = panes.PickerItem{File: def.File, Name: def.Name}
		}
		return a.Pick(items)

	default:
		wf, err := workflow.DetectSingle(dir)
		if err != nil {
			var ambiguous *workflow.AmbiguousError
			if errors.As(err, &ambiguous) {
				return "", usageErrorf("%w; pass --workflow or --pick", err)
			}
			return "", usageErrorf("%w in %s; pass --workflow", err, dir)
		}
		return wf, nil
	}
}

// localDefinition parses the workflow file when it exists locally. A workflow
// that only exists on the remote yields nil.
func (a *App) localDefinition(dir, wf string) (*workflow.Definition, error) {
	path := filepath.Join(dir, wf)
	data, err := a.ReadFile(path)
	if err != nil {
		slog.Debug("No local workflow file", "path", path, "error", err)
		return nil, nil
	}
	def, err := workflow.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if def == nil {
		slog.Warn("Workflow has no workflow_dispatch trigger", "file", path)
	}
	return def, nil
}

func (a *App) dispatcher(host string) (github.Dispatcher, error) {
	token := a.cfg.Token
	if token == "" && a.TokenForHost != nil {
		token = a.TokenForHost(host)
	}
	if token == "" {
		return nil, &UsageError{Err: fmt.Errorf("%w: pass --token or set %s", github.ErrNoToken, dispatch.TokenEnvVar)}
	}
	return a.NewDispatcher(github.Options{Host: host, Token: token})
}

// checkInputs warns about inputs the local workflow does not expect. The
// remote workflow is authoritative, so none of these stop the dispatch.
func checkInputs(def *workflow.Definition, inputs dispatch.Inputs) {
	values := inputs.Map()

	for _, in := range inputs {
		declared, ok := def.Lookup(in.Name)
		if !ok {
			slog.Warn("Input is not declared by the workflow", "workflow", def.File, "input", in.Name)
			continue
		}
		if declared.IsChoice() && !slices.Contains(declared.Options, in.Value) {
			slog.Warn("Value is not one of the choice options",
				"input", in.Name, "value", in.Value, "options", strings.Join(declared.Options, ","))
		}
	}

	for _, declared := range def.Inputs {
		if _, ok := values[declared.Name]; declared.Required && !ok {
			slog.Warn("Required input not supplied", "workflow", def.File, "input", declared.Name)
		}
	}
}
