// Package exec runs external programs behind an interface that tests replace.
package exec

import (
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/cli/safeexec"
)

// CommandExecutor runs a program and returns its captured output.
type CommandExecutor interface {
	Execute(name string, args ...string) (stdout string, stderr string, err error)
}

// RealExecutor runs programs found on PATH.
type RealExecutor struct {
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// NewRealExecutor creates an executor running in dir. Git is kept from
// prompting for credentials and from translating its messages.
func NewRealExecutor(dir string) *RealExecutor {
	return &RealExecutor{
		Dir: dir,
		Env: []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"},
	}
}

// Execute runs name with args and waits for it to exit.
func (e *RealExecutor) Execute(name string, args ...string) (string, string, error) {
	path, err := safeexec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("%s not found: %w", name, err)
	}

	cmd := osexec.Command(path, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdout.String(), stderr.String(), nil
}
