package cmd

import (
	"errors"
	"fmt"

	"github.com/kyleking/gh-makedispatch/internal/dispatch"
	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// Exit codes follow sysexits(3).
const (
	ExitOK         = 0
	ExitError      = 1
	ExitUsage      = 64
	ExitDataErr    = 65
	ExitSoftware   = 70
	ExitCantCreate = 73
)

// ErrNoCommand is returned when gha is run without a subcommand.
var ErrNoCommand = errors.New("no command provided. Try --help")

// UsageError reports invalid invocation or a required value that could not
// be determined.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// OutputError reports a generated file that could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return e.Err.Error()
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usageErr     *UsageError
		choiceErr    *target.ChoiceError
		parseErr     *workflow.ParseError
		argErr       *dispatch.ArgError
		remoteErr    *github.RemoteError
		transportErr *github.TransportError
		outputErr    *OutputError
	)
	switch {
	case errors.As(err, &usageErr), errors.As(err, &choiceErr):
		return ExitUsage
	case errors.As(err, &parseErr), errors.As(err, &argErr):
		return ExitDataErr
	case errors.As(err, &remoteErr), errors.As(err, &transportErr):
		return ExitSoftware
	case errors.As(err, &outputErr):
		return ExitCantCreate
	default:
		return ExitError
	}
}
