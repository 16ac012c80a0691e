package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/gh-makedispatch/internal/gitdefaults"
	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/ui/panes"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

const deployYAML = `name: Deploy
on:
  workflow_dispatch:
    inputs:
      environment:
        type: choice
        required: true
        options: [staging, production]
      version:
        description: Version to deploy
        required: true
`

const lintYAML = `name: Lint
on: workflow_dispatch
`

type fakeDispatcher struct {
	calls    int
	repo     repository.Repository
	workflow string
	req      github.DispatchRequest
	err      error
}

func (f *fakeDispatcher) DispatchWorkflow(_ context.Context, repo repository.Repository, wf string, req github.DispatchRequest) error {
	f.calls++
	f.repo, f.workflow, f.req = repo, wf, req
	return f.err
}

type testEnv struct {
	app        *App
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	dispatcher *fakeDispatcher
	opts       github.Options
	copied     string
	dir        string
}

// newTestEnv creates a repository checkout in a temp dir containing the
// given workflow files and an App that never touches git, the network or
// the terminal.
func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	for _, k := range []string{"GHA_TOKEN", "GITHUB_TOKEN", "GH_TOKEN", "GHA_REPO", "GHA_REF", "GHA_OUTPUT", "GHA_WORKFLOWS_DIR"} {
		t.Setenv(k, "")
	}
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	dir := t.TempDir()
	chdir(t, dir)
	wfDir := filepath.Join(dir, workflow.DefaultDir)
	require.NoError(t, os.MkdirAll(wfDir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(wfDir, name), []byte(content), 0644))
	}

	env := &testEnv{
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
		dispatcher: &fakeDispatcher{},
		dir:        dir,
	}
	env.app = &App{
		Stdin:  &bytes.Buffer{},
		Stdout: env.stdout,
		Stderr: env.stderr,
		Resolver: gitdefaults.Static{
			Repo: repository.Repository{Host: "github.com", Owner: "octo", Name: "app"},
			Ref:  "main",
		},
		NewDispatcher: func(opts github.Options) (github.Dispatcher, error) {
			env.opts = opts
			return env.dispatcher, nil
		},
		ReadFile:     os.ReadFile,
		TokenForHost: func(string) string { return "" },
		Interactive:  func() bool { return false },
		Pick: func([]panes.PickerItem) (string, error) {
			return "", errors.New("picker not expected")
		},
		Copy: func(text string) error {
			env.copied = text
			return nil
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	root := e.app.NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestRoot_NoCommand(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.run()
	require.ErrorIs(t, err, ErrNoCommand)
	require.Equal(t, ExitUsage, ExitCode(err))
}

func TestRoot_UnknownCommandAndFlag(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.run("frobnicate")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))

	err = env.run("generate", "--no-such-flag")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))
}

func TestGenerate_WritesMakefile(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "lint.yml": lintYAML})

	require.NoError(t, env.run("generate"))

	data, err := os.ReadFile(filepath.Join(env.dir, "Makefile"))
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "REPO ?= octo/app")
	require.Contains(t, out, "REF ?= main")
	require.Contains(t, out, "deploy-staging:")
	require.Contains(t, out, "deploy-production:")
	require.Contains(t, out, "lint:")
	require.Contains(t, out, ".PHONY: help deploy-staging deploy-production lint")
	require.Contains(t, env.stderr.String(), "3 targets from 2 workflows")
}

func TestGenerate_StdoutAndOverrides(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})

	require.NoError(t, env.run("generate", "--stdout", "--repo", "github.com/other/repo", "--ref", "release"))

	require.Contains(t, env.stdout.String(), "REPO ?= other/repo")
	require.Contains(t, env.stdout.String(), "REF ?= release")
	_, err := os.Stat(filepath.Join(env.dir, "Makefile"))
	require.True(t, os.IsNotExist(err), "--stdout must not write a file")
}

func TestGenerate_PlaceholderWithoutGit(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})
	env.app.Resolver = gitdefaults.Static{}

	require.NoError(t, env.run("generate", "-o", "-"))

	require.Contains(t, env.stdout.String(), "REPO ?= <owner>/<repo>")
	require.Contains(t, env.stdout.String(), "REF ?= main")
}

func TestGenerate_MalformedWorkflow(t *testing.T) {
	env := newTestEnv(t, map[string]string{"bad.yml": "on: [unclosed\n"})

	err := env.run("generate")
	require.Error(t, err)
	require.Equal(t, ExitDataErr, ExitCode(err))

	_, statErr := os.Stat(filepath.Join(env.dir, "Makefile"))
	require.True(t, os.IsNotExist(statErr), "no Makefile on failure")
}

func TestGenerate_UnwritableOutput(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})

	err := env.run("generate", "-o", filepath.Join(env.dir, "missing", "Makefile"))
	require.Error(t, err)
	require.Equal(t, ExitCantCreate, ExitCode(err))
}

func TestDispatch_CurlTextIsDefault(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML})

	require.NoError(t, env.run("dispatch", "--arg", "environment=staging", "--arg", "version=1.0"))

	out := env.stdout.String()
	require.Contains(t, out, "https://api.github.com/repos/octo/app/actions/workflows/deploy.yml/dispatches")
	require.Contains(t, out, `{"ref":"main","inputs":{"environment":"staging","version":"1.0"}}`)
	require.Zero(t, env.dispatcher.calls)
}

func TestDispatch_MakeTextWithCopy(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML})

	require.NoError(t, env.run("dispatch", "--mode", "make", "--copy",
		"--workflow", "deploy", "--arg", "environment=production", "--arg", "version=2.0"))

	require.Equal(t, "make deploy-production REPO=octo/app REF=main VERSION=2.0\n", env.stdout.String())
	require.Equal(t, "make deploy-production REPO=octo/app REF=main VERSION=2.0", env.copied)
}

func TestDispatch_MakeTextNeedsChoiceValue(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML})

	err := env.run("dispatch", "--mode", "make", "--copy", "--arg", "version=1.0")
	var choiceErr *target.ChoiceError
	require.ErrorAs(t, err, &choiceErr)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Contains(t, err.Error(), "staging, production")
	require.Empty(t, env.stdout.String())
	require.Empty(t, env.copied)

	err = env.run("dispatch", "--mode", "make", "--arg", "environment=Staging", "--arg", "version=1.0")
	require.ErrorAs(t, err, &choiceErr)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Empty(t, env.stdout.String())
}

func TestDispatch_Execute(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML})
	t.Setenv("GITHUB_TOKEN", "env-token")

	notes := filepath.Join(env.dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("line one\nline two"), 0644))

	require.NoError(t, env.run("dispatch", "--mode", "execute", "--ref", "v1",
		"--arg", "environment=staging", "--arg", "version=@"+notes))

	require.Equal(t, 1, env.dispatcher.calls)
	require.Equal(t, "env-token", env.opts.Token)
	require.Equal(t, "deploy.yml", env.dispatcher.workflow)
	require.Equal(t, "v1", env.dispatcher.req.Ref)

	body, err := json.Marshal(env.dispatcher.req)
	require.NoError(t, err)
	require.JSONEq(t, `{"ref":"v1","inputs":{"environment":"staging","version":"line one\nline two"}}`, string(body))
	require.Contains(t, env.stdout.String(), "Dispatched deploy.yml on octo/app@v1")
}

func TestDispatch_ExecuteTokenFallback(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})
	env.app.TokenForHost = func(host string) string {
		if host == "github.com" {
			return "gh-login-token"
		}
		return ""
	}

	require.NoError(t, env.run("dispatch", "--mode", "execute"))
	require.Equal(t, "gh-login-token", env.opts.Token)
}

func TestDispatch_ExecuteWithoutToken(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})

	err := env.run("dispatch", "--mode", "execute")
	require.ErrorIs(t, err, github.ErrNoToken)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Zero(t, env.dispatcher.calls)
}

func TestDispatch_RemoteFailure(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})
	env.dispatcher.err = &github.RemoteError{StatusCode: 422, Body: `{"message":"Unexpected inputs provided"}`}

	err := env.run("dispatch", "--mode", "execute", "--token", "t")
	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
	require.Contains(t, err.Error(), "Unexpected inputs provided")
	require.Equal(t, ExitSoftware, ExitCode(err))
}

func TestDispatch_WorkflowDetection(t *testing.T) {
	t.Run("ambiguous", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "lint.yml": lintYAML})

		err := env.run("dispatch")
		require.Error(t, err)
		require.Equal(t, ExitUsage, ExitCode(err))
		require.Contains(t, err.Error(), "deploy.yml")
		require.Contains(t, err.Error(), "lint.yml")
	})

	t.Run("none", func(t *testing.T) {
		env := newTestEnv(t, nil)

		err := env.run("dispatch")
		require.ErrorIs(t, err, workflow.ErrNoWorkflows)
		require.Equal(t, ExitUsage, ExitCode(err))
	})

	t.Run("unknown name suggests", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "lint.yml": lintYAML})

		err := env.run("dispatch", "--workflow", "deply")
		require.Error(t, err)
		require.Equal(t, ExitUsage, ExitCode(err))
		require.Contains(t, err.Error(), "did you mean")
	})
}

func TestDispatch_MissingDefaults(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})
	env.app.Resolver = gitdefaults.Static{}

	err := env.run("dispatch")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Contains(t, err.Error(), "--repo")

	err = env.run("dispatch", "--repo", "octo/app")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Contains(t, err.Error(), "--ref")
}

func TestDispatch_BadArgAndMode(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})

	err := env.run("dispatch", "--arg", "novalue")
	require.Error(t, err)
	require.Equal(t, ExitDataErr, ExitCode(err))

	err = env.run("dispatch", "--arg", "notes=@"+filepath.Join(env.dir, "missing.txt"))
	require.Error(t, err)
	require.Equal(t, ExitDataErr, ExitCode(err))
	require.Contains(t, err.Error(), "missing.txt")

	err = env.run("dispatch", "--mode", "carrier-pigeon")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))
}

func TestDispatch_WarnsAboutInputs(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML})

	require.NoError(t, env.run("dispatch", "--arg", "environment=qa", "--arg", "extra=1"))

	logs := env.stderr.String()
	require.Contains(t, logs, "Value is not one of the choice options")
	require.Contains(t, logs, "Input is not declared by the workflow")
	require.Contains(t, logs, "Required input not supplied")
	require.Contains(t, logs, "input=version")
}

func TestDispatch_Pick(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "lint.yml": lintYAML})

	err := env.run("dispatch", "--pick")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err), "picker needs a terminal")

	var offered []panes.PickerItem
	env.app.Interactive = func() bool { return true }
	env.app.Pick = func(items []panes.PickerItem) (string, error) {
		offered = items
		return "lint.yml", nil
	}

	require.NoError(t, env.run("dispatch", "--pick", "--mode", "make"))
	require.Equal(t, []panes.PickerItem{{File: "deploy.yml", Name: "Deploy"}, {File: "lint.yml", Name: "Lint"}}, offered)
	require.Equal(t, "make lint REPO=octo/app REF=main\n", env.stdout.String())
}

func TestDispatch_DetectionCountsEveryWorkflowFile(t *testing.T) {
	pushOnly := "name: CI\non: push\n"
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "ci.yml": pushOnly})

	err := env.run("dispatch")
	var ambiguous *workflow.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, []string{"ci.yml", "deploy.yml"}, ambiguous.Candidates)
	require.Equal(t, ExitUsage, ExitCode(err))

	var offered []panes.PickerItem
	env.app.Interactive = func() bool { return true }
	env.app.Pick = func(items []panes.PickerItem) (string, error) {
		offered = items
		return items[0].File, nil
	}
	require.NoError(t, env.run("dispatch", "--pick", "--arg", "environment=staging", "--arg", "version=1"))
	require.Equal(t, []panes.PickerItem{{File: "deploy.yml", Name: "Deploy"}}, offered)

	root := env.app.NewRootCmd()
	dispatchCmd, _, err := root.Find([]string{"dispatch"})
	require.NoError(t, err)
	require.Contains(t, dispatchCmd.Long, "--pick offers only the files that have a\nworkflow_dispatch trigger")
}

func TestList(t *testing.T) {
	env := newTestEnv(t, map[string]string{"deploy.yml": deployYAML, "lint.yml": lintYAML})

	require.NoError(t, env.run("list"))

	out := env.stdout.String()
	require.Contains(t, out, "Deploy")
	require.Contains(t, out, "(deploy.yml)")
	require.Contains(t, out, "ENVIRONMENT")
	require.Contains(t, out, "one of staging, production")
	require.Contains(t, out, "targets: deploy-staging deploy-production")
	require.Contains(t, out, "targets: lint")
}

func TestConfigFile(t *testing.T) {
	env := newTestEnv(t, map[string]string{"lint.yml": lintYAML})
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, ".gha.yaml"), []byte("repo: cfg/repo\nref: cfg-ref\n"), 0644))

	require.NoError(t, env.run("dispatch", "--mode", "make"))
	require.Equal(t, "make lint REPO=cfg/repo REF=cfg-ref\n", env.stdout.String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", usageErrorf("bad"), ExitUsage},
		{"choice", &target.ChoiceError{Workflow: "deploy.yml", Input: "environment"}, ExitUsage},
		{"parse", &workflow.ParseError{Path: "x.yml", Err: errors.New("bad")}, ExitDataErr},
		{"remote", &github.RemoteError{StatusCode: 500}, ExitSoftware},
		{"transport", &github.TransportError{URL: "u", Err: errors.New("eof")}, ExitSoftware},
		{"output", &OutputError{Path: "Makefile", Err: errors.New("denied")}, ExitCantCreate},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
