package workflow

import "fmt"

// InputTypeChoice is the workflow_dispatch input type that carries an options list.
const InputTypeChoice = "choice"

// DefaultDir is the conventional workflow directory relative to a repository root.
const DefaultDir = ".github/workflows"

// Definition is a parsed workflow file that can be triggered with workflow_dispatch.
type Definition struct {
	// File is the bare file name, e.g. "deploy.yml". It is both the target
	// base name and the workflow identifier in the dispatch API path.
	File string
	// Name is the declared workflow name, or File when none is declared.
	Name string
	// Inputs are kept in declaration order.
	Inputs []Input

	HasRepositoryDispatch   bool
	RepositoryDispatchTypes []string
}

// Input is one normalized workflow_dispatch input.
type Input struct {
	Name        string
	Description string
	// Required is true only when the input is declared required and has no default.
	Required bool
	Default  *string
	Type     string
	Options  []string
}

// HasDefault reports whether the workflow declared a default value.
func (i Input) HasDefault() bool {
	return i.Default != nil
}

// IsChoice reports whether the input is a choice input with at least one option.
func (i Input) IsChoice() bool {
	return i.Type == InputTypeChoice && len(i.Options) > 0
}

// InputType returns the declared type, or "STRING" when none was declared.
func (i Input) InputType() string {
	if i.Type == "" {
		return "STRING"
	}
	return i.Type
}

// InputNames returns the input names in declaration order.
func (d *Definition) InputNames() []string {
	names := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		names[i] = in.Name
	}
	return names
}

// Lookup returns the input with the given name.
func (d *Definition) Lookup(name string) (Input, bool) {
	for _, in := range d.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// ParseError reports a workflow file that could not be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
