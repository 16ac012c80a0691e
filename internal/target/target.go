// Package target turns workflow definitions into concrete dispatch targets.
package target

import (
	"fmt"
	"strings"

	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// Override pins an input to a literal value.
type Override struct {
	Input string
	Value string
}

// Target is one invokable unit: a Makefile target or a single API call.
type Target struct {
	Name     string
	Workflow *workflow.Definition
	// Fixed holds inputs pinned by choice expansion. At most one entry today.
	Fixed []Override
	// RequiredVars are the upper-cased names of required inputs that are not pinned.
	RequiredVars []string
}

// FixedValue returns the pinned value for input, if any.
func (t Target) FixedValue(input string) (string, bool) {
	for _, o := range t.Fixed {
		if o.Input == input {
			return o.Value, true
		}
	}
	return "", false
}

// BaseName strips a single .yml or .yaml extension from a workflow file name.
func BaseName(file string) string {
	if s, ok := strings.CutSuffix(file, ".yml"); ok {
		return s
	}
	return strings.TrimSuffix(file, ".yaml")
}

// OptionSuffix normalizes a choice option for use in a target name. It only
// lower-cases and replaces ':' with '_'; other punctuation is kept.
func OptionSuffix(option string) string {
	return strings.ReplaceAll(strings.ToLower(option), ":", "_")
}

// VarName is the Makefile variable that supplies an input's value.
func VarName(input string) string {
	return strings.ToUpper(input)
}

// Expand computes the targets for a workflow. Only the first declared
// input is considered for expansion: when it is a choice input with
// options, one target per option is produced, in option order. Otherwise
// a single target named after the workflow file is returned.
func Expand(def *workflow.Definition) []Target {
	base := BaseName(def.File)

	if len(def.Inputs) == 0 || !def.Inputs[0].IsChoice() {
		return []Target{newTarget(base, def, nil)}
	}

	first := def.Inputs[0]
	targets := make([]Target, 0, len(first.Options))
	for _, opt := range first.Options {
		name := base + "-" + OptionSuffix(opt)
		targets = append(targets, newTarget(name, def, &Override{Input: first.Name, Value: opt}))
	}
	return targets
}

// ChoiceError is returned by ForValues when a workflow only has expanded
// targets and the values do not pick one of them.
type ChoiceError struct {
	Workflow string
	Input    string
	// Value is the supplied value; empty when the input was not supplied.
	Value    string
	Supplied bool
	Options  []string
}

func (e *ChoiceError) Error() string {
	if !e.Supplied {
		return fmt.Sprintf("%s has one make target per %s option; pass %s=<one of %s>",
			e.Workflow, e.Input, e.Input, strings.Join(e.Options, ", "))
	}
	return fmt.Sprintf("%s=%q matches no make target of %s; expected one of %s",
		e.Input, e.Value, e.Workflow, strings.Join(e.Options, ", "))
}

// ForValues selects the target of Expand(def) matching concrete input
// values. When the first input is expandable, its value must be one of the
// options, since no target named after the bare workflow exists then.
func ForValues(def *workflow.Definition, values map[string]string) (Target, error) {
	targets := Expand(def)
	if len(targets[0].Fixed) == 0 {
		return targets[0], nil
	}

	first := def.Inputs[0]
	v, ok := values[first.Name]
	if ok {
		for _, t := range targets {
			if fixed, _ := t.FixedValue(first.Name); fixed == v {
				return t, nil
			}
		}
	}
	return Target{}, &ChoiceError{
		Workflow: def.File,
		Input:    first.Name,
		Value:    v,
		Supplied: ok,
		Options:  first.Options,
	}
}

func newTarget(name string, def *workflow.Definition, fixed *Override) Target {
	t := Target{Name: name, Workflow: def}
	if fixed != nil {
		t.Fixed = []Override{*fixed}
	}
	for _, in := range def.Inputs {
		if !in.Required {
			continue
		}
		if _, pinned := t.FixedValue(in.Name); pinned {
			continue
		}
		t.RequiredVars = append(t.RequiredVars, VarName(in.Name))
	}
	return t
}

// Names returns the names of targets in order.
func Names(targets []Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}
