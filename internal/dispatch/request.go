package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"

	"github.com/kyleking/gh-makedispatch/internal/github"
	"github.com/kyleking/gh-makedispatch/internal/gitdefaults"
	"github.com/kyleking/gh-makedispatch/internal/target"
	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// TokenEnvVar is the variable referenced by printed commands instead of the token itself.
const TokenEnvVar = "GITHUB_TOKEN"

// ErrNoDispatcher is returned by Run in Execute mode without a dispatcher.
var ErrNoDispatcher = errors.New("no dispatcher configured")

// Request is a fully resolved direct dispatch.
type Request struct {
	Repo     repository.Repository
	Workflow string
	// Definition is the parsed local workflow, if one was found. It is only
	// used to pick the make target.
	Definition *workflow.Definition
	Ref        string
	Inputs     Inputs
}

// Payload returns the API request body. Values are literal; nothing is
// deferred to later substitution.
func (r Request) Payload() github.DispatchRequest {
	return github.DispatchRequest{Ref: r.Ref, Inputs: r.Inputs.Map()}
}

// URL returns the dispatch endpoint for the request.
func (r Request) URL() string {
	return github.DispatchURL(github.APIBase(r.Repo.Host), r.Repo, r.Workflow)
}

// CurlCommand renders the request as a curl command line. The token is
// referenced through $GITHUB_TOKEN so it never ends up in shell history.
func CurlCommand(r Request) (string, error) {
	body, err := json.Marshal(r.Payload())
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	lines := []string{
		"curl -L -X POST",
		`  -H "Accept: ` + github.AcceptHeader + `"`,
		`  -H "Authorization: Bearer $` + TokenEnvVar + `"`,
		`  -H "X-GitHub-Api-Version: ` + github.APIVersion + `"`,
		"  " + r.URL(),
		"  -d " + singleQuote(string(body)),
	}
	return strings.Join(lines, " \\\n"), nil
}

// MakeCommand renders the make invocation for a generated Makefile. When
// the first input is a choice input, its value selects the expanded target
// and is left out of the variables; a missing or unknown value is a
// *target.ChoiceError because the Makefile has no target for it.
func MakeCommand(r Request) (string, error) {
	t := target.Target{Name: target.BaseName(r.Workflow)}
	if r.Definition != nil {
		var err error
		if t, err = target.ForValues(r.Definition, r.Inputs.Map()); err != nil {
			return "", err
		}
	}

	parts := []string{"make", t.Name}
	if r.Repo.Owner != "" {
		parts = append(parts, "REPO="+shellWord(gitdefaults.FullName(r.Repo)))
	}
	if r.Ref != "" {
		parts = append(parts, "REF="+shellWord(makeValue(r.Ref)))
	}
	for _, in := range r.Inputs {
		if _, pinned := t.FixedValue(in.Name); pinned {
			continue
		}
		parts = append(parts, target.VarName(in.Name)+"="+shellWord(makeValue(in.Value)))
	}
	return strings.Join(parts, " "), nil
}

// Text renders the request for a text mode. ok is false for Execute.
func Text(mode Mode, r Request) (text string, ok bool, err error) {
	switch mode.(type) {
	case CurlText:
		text, err = CurlCommand(r)
		return text, true, err
	case MakeText:
		text, err = MakeCommand(r)
		return text, true, err
	case Execute:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("unsupported mode %v", mode)
	}
}

// Run carries out the request in the given mode, writing text output to out.
func Run(ctx context.Context, mode Mode, r Request, out io.Writer, d github.Dispatcher) error {
	if _, isExecute := mode.(Execute); !isExecute {
		text, _, err := Text(mode, r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	if d == nil {
		return ErrNoDispatcher
	}
	slog.Info("Dispatching workflow", "repo", gitdefaults.FullName(r.Repo), "workflow", r.Workflow, "ref", r.Ref)
	if err := d.DispatchWorkflow(ctx, r.Repo, r.Workflow, r.Payload()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Dispatched %s on %s@%s\n", r.Workflow, gitdefaults.FullName(r.Repo), r.Ref)
	return err
}

var safeShellWord = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,-]+$`)

// shellWord quotes s only when the shell would otherwise split or expand it.
func shellWord(s string) string {
	if safeShellWord.MatchString(s) {
		return s
	}
	return singleQuote(s)
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// makeValue protects a command-line variable value from make expansion.
func makeValue(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
