package exec

import (
	"fmt"
	"slices"
	"strings"
)

// Wildcard matches any single argument in a stubbed command.
const Wildcard = "*"

// MockExecutor answers commands from registered stubs and records every call.
type MockExecutor struct {
	stubs []stub

	// DefaultResult answers commands no stub matches. Nil makes them fail.
	DefaultResult *CommandResult

	// ExecutedCommands lists calls in the order they were made.
	ExecutedCommands []ExecutedCommand
}

// CommandResult is the canned outcome of a command.
type CommandResult struct {
	Stdout string
	Stderr string
	Error  error
}

// ExecutedCommand is one recorded call.
type ExecutedCommand struct {
	Name string
	Args []string
}

type stub struct {
	words  []string
	result CommandResult
}

func (s stub) wildcard() bool {
	return slices.Contains(s.words, Wildcard)
}

func (s stub) matches(call []string) bool {
	if len(s.words) != len(call) {
		return false
	}
	for i, w := range s.words {
		if w != Wildcard && w != call[i] {
			return false
		}
	}
	return true
}

// NewMockExecutor creates a mock with no stubs.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Execute records the call and returns the matching stub's result. Exact
// stubs win over stubs containing Wildcard.
func (m *MockExecutor) Execute(name string, args ...string) (string, string, error) {
	m.ExecutedCommands = append(m.ExecutedCommands, ExecutedCommand{Name: name, Args: args})

	call := append([]string{name}, args...)
	for _, wantWildcard := range []bool{false, true} {
		for _, s := range m.stubs {
			if s.wildcard() == wantWildcard && s.matches(call) {
				return s.result.Stdout, s.result.Stderr, s.result.Error
			}
		}
	}

	if m.DefaultResult != nil {
		return m.DefaultResult.Stdout, m.DefaultResult.Stderr, m.DefaultResult.Error
	}
	return "", "", fmt.Errorf("mock executor: no result configured for %q", strings.Join(call, " "))
}

// AddCommand stubs a command. Registering the same command again replaces
// the earlier result.
func (m *MockExecutor) AddCommand(name string, args []string, stdout, stderr string, err error) {
	words := append([]string{name}, args...)
	result := CommandResult{Stdout: stdout, Stderr: stderr, Error: err}

	for i := range m.stubs {
		if slices.Equal(m.stubs[i].words, words) {
			m.stubs[i].result = result
			return
		}
	}
	m.stubs = append(m.stubs, stub{words: words, result: result})
}

// AddGit stubs a git command.
func (m *MockExecutor) AddGit(args []string, stdout string, err error) {
	m.AddCommand("git", args, stdout, "", err)
}

// Reset drops all stubs, the default result and the call history.
func (m *MockExecutor) Reset() {
	m.stubs = nil
	m.DefaultResult = nil
	m.ExecutedCommands = nil
}
