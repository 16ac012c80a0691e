// Package render builds the generated Makefile and its payload fragments.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

const (
	// RepoPlaceholder is written when no repository could be determined.
	RepoPlaceholder = "<owner>/<repo>"
	// DefaultRef is written when no ref could be determined.
	DefaultRef = "main"
)

//go:embed Makefile.tmpl
var makefileTemplate string

var tmpl = template.Must(template.New("Makefile").
	Funcs(template.FuncMap{"literal": func(s string) string { return makeEscape(shellEscape(s)) }}).
	Parse(makefileTemplate))

// Model is the data passed to the Makefile template.
type Model struct {
	Repo       string
	Ref        string
	Delimiter  string
	APIVersion string
	Targets    []TargetBlock
	AllTargets []string
}

// TargetBlock is one rendered Makefile target.
type TargetBlock struct {
	Name         string
	Workflow     string
	CommentLines []string
	RequiredVars []string
	Inputs       string
}

// BuildModel expands every workflow into targets. Empty repo or ref fall
// back to RepoPlaceholder and DefaultRef.
func BuildModel(defs []*workflow.Definition, repo, ref string) Model {
	if repo == "" {
		repo = RepoPlaceholder
	}
	if ref == "" {
		ref = DefaultRef
	}

	m := Model{
		Repo:       repo,
		Ref:        ref,
		Delimiter:  Delimiter,
		APIVersion: github.APIVersion,
	}

	seen := make(map[string]string)
	for _, def := range defs {
		slog.Info(fmt.Sprintf("workflow_dispatch: %s(%s)", def.File, strings.Join(def.InputNames(), ", ")))

		comments := CommentLines(def)
		for _, t := range target.Expand(def) {
			if prev, dup := seen[t.Name]; dup {
				slog.Warn("Duplicate make target; the later recipe overrides the earlier one",
					"target", t.Name, "file", def.File, "previous", prev)
			}
			seen[t.Name] = describeTarget(t)
			m.Targets = append(m.Targets, TargetBlock{
				Name:         t.Name,
				Workflow:     t.Workflow.File,
				CommentLines: comments,
				RequiredVars: t.RequiredVars,
				Inputs:       Fragment(t),
			})
			m.AllTargets = append(m.AllTargets, t.Name)
		}
	}
	return m
}

// describeTarget names the workflow, and the pinned option if any, that a
// target dispatches.
func describeTarget(t target.Target) string {
	if len(t.Fixed) == 0 {
		return t.Workflow.File
	}
	return fmt.Sprintf("%s %s=%s", t.Workflow.File, t.Fixed[0].Input, t.Fixed[0].Value)
}

// Render executes the Makefile template.
func Render(m Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("failed to render Makefile template: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate builds and renders the Makefile for the given workflows.
func Generate(defs []*workflow.Definition, repo, ref string) ([]byte, error) {
	return Render(BuildModel(defs, repo, ref))
}

// WriteFile replaces path with data through a temporary file in the same
// directory, so a failure never leaves a partially written file behind.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
