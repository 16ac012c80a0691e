// Package cmd implements the gha command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kyleking/gh-makedispatch/internal/config"
	"github.com/kyleking/gh-makedispatch/internal/dispatch"
	"github.com/kyleking/gh-makedispatch/internal/exec"
	"github.com/kyleking/gh-makedispatch/internal/gitdefaults"
	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/logging"
	"github.com/kyleking/gh-makedispatch/internal/ui"
	"github.com/kyleking/gh-makedispatch/internal/ui/panes"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// Version is set at build time.
var Version = "dev"

// App holds the collaborators shared by all commands. Tests replace them.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Resolver supplies the repository and ref when they are not configured.
	Resolver gitdefaults.Resolver
	// NewDispatcher builds the API client used in execute mode.
	NewDispatcher func(opts github.Options) (github.Dispatcher, error)
	// ReadFile reads @path argument values and local workflow files.
	ReadFile dispatch.FileReader
	// TokenForHost is the last resort for a token, e.g. a gh CLI login.
	TokenForHost func(host string) string
	// Interactive reports whether the picker can be shown.
	Interactive func() bool
	Pick        func(items []panes.PickerItem) (string, error)
	Copy        func(text string) error

	v          *viper.Viper
	cfg        config.Config
	configPath string
	logOpts    logging.Options
}

// NewApp returns an App wired to the real terminal, git, and GitHub.
func NewApp() *App {
	return &App{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Resolver: gitdefaults.NewGitResolver(exec.NewRealExecutor("")),
		NewDispatcher: func(opts github.Options) (github.Dispatcher, error) {
			client, err := github.NewClient(opts)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		ReadFile: os.ReadFile,
		TokenForHost: func(host string) string {
			token, _ := auth.TokenForHost(host)
			return token
		},
		Interactive: func() bool {
			return term.IsTerminal(os.Stdin) && term.IsTerminal(os.Stderr)
		},
		Pick: func(items []panes.PickerItem) (string, error) {
			return panes.Pick(items, os.Stdin, os.Stderr)
		},
		Copy: clipboard.WriteAll,
	}
}

// Execute runs gha with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	app := NewApp()
	root := app.NewRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		styles := ui.NewStyles(lipgloss.NewRenderer(app.Stderr))
		fmt.Fprintf(app.Stderr, "%s %v\n", styles.Error.Render("Error:"), err)
	}
	return ExitCode(err)
}

// NewRootCmd builds the command tree. Each call gets its own configuration.
func (a *App) NewRootCmd() *cobra.Command {
	a.v = viper.New()

	root := &cobra.Command{
		Use:   "gha",
		Short: "Turn workflow_dispatch workflows into make targets",
		Long: `gha reads the workflow_dispatch workflows of a repository and generates a
Makefile with one target per workflow, or per option of a leading choice
input. It can also dispatch a single workflow directly.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              noArgs,
		PersistentPreRunE: a.setup,
		RunE: func(*cobra.Command, []string) error {
			return &UsageError{Err: ErrNoCommand}
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	flags := root.PersistentFlags()
	flags.CountVarP(&a.logOpts.Verbosity, "verbose", "v", "increase log verbosity (-vv adds source locations)")
	flags.BoolVarP(&a.logOpts.Quiet, "quiet", "q", false, "only log warnings and errors")
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: .gha.yaml if present)")
	flags.String("workflows-dir", workflow.DefaultDir, "directory containing workflow files")
	flags.StringP("repo", "R", "", "repository as OWNER/REPO or HOST/OWNER/REPO (default: origin remote)")
	flags.String("ref", "", "git ref to dispatch on (default: current branch)")

	_ = a.v.BindPFlag("workflows_dir", flags.Lookup("workflows-dir"))
	_ = a.v.BindPFlag("repo", flags.Lookup("repo"))
	_ = a.v.BindPFlag("ref", flags.Lookup("ref"))

	root.AddCommand(a.newGenerateCmd(), a.newDispatchCmd(), a.newListCmd())
	return root
}

func (a *App) setup(*cobra.Command, []string) error {
	logging.Setup(a.Stderr, a.logOpts)

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if used := a.v.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config", "file", used)
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

// resolveRepo returns the configured repository, falling back to the
// resolver. ok is false when neither knows one.
func (a *App) resolveRepo() (repo repository.Repository, ok bool, err error) {
	if a.cfg.Repo != "" {
		repo, err := repository.Parse(a.cfg.Repo)
		if err != nil {
			return repository.Repository{}, false, usageErrorf("invalid repository %q: %w", a.cfg.Repo, err)
		}
		return repo, true, nil
	}
	if a.Resolver != nil {
		if repo, ok := a.Resolver.DefaultRepo(); ok {
			slog.Debug("Using repository from git remote", "repo", gitdefaults.FullName(repo))
			return repo, true, nil
		}
	}
	return repository.Repository{}, false, nil
}

func (a *App) resolveRef() (string, bool) {
	if a.cfg.Ref != "" {
		return a.cfg.Ref, true
	}
	if a.Resolver != nil {
		if ref, ok := a.Resolver.DefaultRef(); ok {
			slog.Debug("Using ref from git", "ref", ref)
			return ref, true
		}
	}
	return "", false
}

func (a *App) styles(w io.Writer) ui.Styles {
	return ui.NewStyles(lipgloss.NewRenderer(w))
}
