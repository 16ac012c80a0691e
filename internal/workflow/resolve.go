package workflow

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// NotFoundError is returned when a requested workflow does not exist locally.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("workflow %q not found", e.Name)
	}
	return fmt.Sprintf("workflow %q not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// Resolve maps a user-supplied workflow reference to a file name in dir.
// It accepts the file name itself or the name without its extension. When
// dir has no workflow files the name is returned as given, since the
// workflow may only exist remotely.
func Resolve(dir, name string) (string, error) {
	candidates := Candidates(dir)
	if len(candidates) == 0 {
		return name, nil
	}

	for _, c := range candidates {
		if c == name {
			return c, nil
		}
	}
	for _, c := range candidates {
		if strings.TrimSuffix(strings.TrimSuffix(c, ".yml"), ".yaml") == name {
			return c, nil
		}
	}

	return "", &NotFoundError{Name: name, Suggestions: suggest(name, candidates)}
}

func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	var out []string
	for i, m := range matches {
		if i == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
