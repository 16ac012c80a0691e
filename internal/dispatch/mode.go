package dispatch

import (
	"fmt"
	"strings"
)

// Mode selects what the dispatch command does with a request. The set of
// modes is closed: CurlText, MakeText and Execute.
type Mode interface {
	fmt.Stringer
	isMode()
}

// CurlText prints a ready-to-run curl command.
type CurlText struct{}

// MakeText prints the equivalent make invocation.
type MakeText struct{}

// Execute performs the API call.
type Execute struct{}

func (CurlText) isMode() {}
func (MakeText) isMode() {}
func (Execute) isMode()  {}

func (CurlText) String() string { return "curl" }
func (MakeText) String() string { return "make" }
func (Execute) String() string  { return "execute" }

// Modes lists every mode, in help order.
var Modes = []Mode{CurlText{}, MakeText{}, Execute{}}

// ParseMode parses a --mode flag value.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown mode %q (expected one of %s)", s, ModeNames())
}

// ModeNames returns the flag values accepted by ParseMode.
func ModeNames() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}
