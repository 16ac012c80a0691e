package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoWorkflows is returned when no workflow files exist in the directory.
var ErrNoWorkflows = errors.New("no workflow files found")

// AmbiguousError is returned when a single workflow was expected but several exist.
type AmbiguousError struct {
	Dir        string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple workflows found in %s: %s", e.Dir, strings.Join(e.Candidates, ", "))
}

// DiscoverDir parses every workflow file in dir, in file name order, and
// returns those with a workflow_dispatch trigger. A missing or unreadable
// directory yields no workflows. Any parse failure aborts discovery.
func DiscoverDir(dir string) ([]*Definition, error) {
	files := Candidates(dir)

	var workflows []*Definition
	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		def, err := Parse(path, data)
		if err != nil {
			return nil, err
		}
		if def == nil {
			slog.Debug("Skipping workflow without workflow_dispatch", "file", name)
			continue
		}
		workflows = append(workflows, def)
	}

	slog.Info("Discovered workflows", "dir", dir, "files", len(files), "dispatchable", len(workflows))
	return workflows, nil
}

// Candidates lists the workflow file names in dir, sorted. Subdirectories
// are not scanned and an unreadable directory has no candidates.
func Candidates(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Workflow directory unreadable", "dir", dir, "error", err)
		}
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsWorkflowFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// IsWorkflowFile reports whether name has a .yml or .yaml extension.
func IsWorkflowFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yml" || ext == ".yaml"
}

// DetectSingle returns the only workflow file in dir. It fails with
// ErrNoWorkflows or an *AmbiguousError otherwise.
func DetectSingle(dir string) (string, error) {
	names := Candidates(dir)
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoWorkflows, dir)
	case 1:
		return names[0], nil
	default:
		return "", &AmbiguousError{Dir: dir, Candidates: names}
	}
}
