// Package gitdefaults derives the default repository and ref from local git metadata.
package gitdefaults

import (
	"log/slog"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"

	"github.com/kyleking/gh-makedispatch/internal/exec"
)

// Resolver supplies defaults for values the user did not pass explicitly.
type Resolver interface {
	DefaultRepo() (repository.Repository, bool)
	DefaultRef() (string, bool)
}

// GitResolver asks git about the repository in its executor's directory.
type GitResolver struct {
	executor exec.CommandExecutor
}

// NewGitResolver creates a resolver backed by the given executor.
func NewGitResolver(executor exec.CommandExecutor) *GitResolver {
	return &GitResolver{executor: executor}
}

// DefaultRepo parses the origin remote URL. Both HTTPS and SSH remotes are
// understood.
func (r *GitResolver) DefaultRepo() (repository.Repository, bool) {
	out, ok := r.git("config", "--get", "remote.origin.url")
	if !ok {
		return repository.Repository{}, false
	}

	repo, err := repository.Parse(out)
	if err != nil {
		slog.Debug("Could not parse origin remote", "url", out, "error", err)
		return repository.Repository{}, false
	}
	return repo, true
}

// DefaultRef returns the current branch, or the commit SHA when HEAD is detached.
func (r *GitResolver) DefaultRef() (string, bool) {
	if branch, ok := r.git("symbolic-ref", "--short", "HEAD"); ok {
		return branch, true
	}
	if sha, ok := r.git("rev-parse", "HEAD"); ok {
		return sha, true
	}
	return "", false
}

func (r *GitResolver) git(args ...string) (string, bool) {
	stdout, stderr, err := r.executor.Execute("git", args...)
	if err != nil {
		slog.Debug("git command failed", "args", strings.Join(args, " "), "error", err, "stderr", strings.TrimSpace(stderr))
		return "", false
	}
	out := strings.TrimSpace(stdout)
	return out, out != ""
}

// Static is a Resolver with fixed answers. Zero values mean "unknown".
type Static struct {
	Repo repository.Repository
	Ref  string
}

// DefaultRepo returns the fixed repository, if set.
func (s Static) DefaultRepo() (repository.Repository, bool) {
	return s.Repo, s.Repo.Owner != "" && s.Repo.Name != ""
}

// DefaultRef returns the fixed ref, if set.
func (s Static) DefaultRef() (string, bool) {
	return s.Ref, s.Ref != ""
}

// FullName formats a repository as owner/name.
func FullName(repo repository.Repository) string {
	return repo.Owner + "/" + repo.Name
}
