package workflow

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	triggerWorkflowDispatch   = "workflow_dispatch"
	triggerRepositoryDispatch = "repository_dispatch"
)

// Parse parses workflow YAML content read from path. It returns nil and no
// error when the workflow has no workflow_dispatch trigger.
func Parse(path string, data []byte) (*Definition, error) {
	var raw rawWorkflow
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	file := filepath.Base(path)
	def := &Definition{
		File: file,
		Name: raw.Name,
	}
	if def.Name == "" {
		def.Name = file
	}

	if rd := raw.On.RepositoryDispatch; rd != nil {
		def.HasRepositoryDispatch = true
		def.RepositoryDispatchTypes = rd.Types
		slog.Warn("Ignoring repository_dispatch trigger",
			"file", path, "types", strings.Join(rd.Types, ","))
	}

	if raw.On.WorkflowDispatch == nil {
		return nil, nil
	}

	def.Inputs = make([]Input, 0, len(raw.On.WorkflowDispatch.Inputs))
	for _, in := range raw.On.WorkflowDispatch.Inputs {
		def.Inputs = append(def.Inputs, Normalize(in.name, in.raw))
	}

	return def, nil
}

// rawWorkflow handles the flexible "on" field parsing.
type rawWorkflow struct {
	Name string       `yaml:"name"`
	On   rawOnTrigger `yaml:"on"`
}

// rawOnTrigger handles "on" being either a string, list, or map.
type rawOnTrigger struct {
	WorkflowDispatch   *rawWorkflowDispatch
	RepositoryDispatch *rawRepositoryDispatch
}

type rawWorkflowDispatch struct {
	Inputs orderedInputs `yaml:"inputs"`
}

type rawRepositoryDispatch struct {
	Types stringList `yaml:"types"`
}

func (t *rawOnTrigger) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.setTrigger(node.Value)
	case yaml.SequenceNode:
		var triggers []string
		if err := node.Decode(&triggers); err != nil {
			return err
		}
		for _, trigger := range triggers {
			t.setTrigger(trigger)
		}
	case yaml.MappingNode:
		// Walked by hand: a bare "workflow_dispatch:" has a null value and
		// still marks the workflow as dispatchable.
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			switch key.Value {
			case triggerWorkflowDispatch:
				wd := &rawWorkflowDispatch{}
				if err := value.Decode(wd); err != nil {
					return fmt.Errorf("%s: %w", triggerWorkflowDispatch, err)
				}
				t.WorkflowDispatch = wd
			case triggerRepositoryDispatch:
				rd := &rawRepositoryDispatch{}
				if err := value.Decode(rd); err != nil {
					return fmt.Errorf("%s: %w", triggerRepositoryDispatch, err)
				}
				t.RepositoryDispatch = rd
			}
		}
	}
	return nil
}

func (t *rawOnTrigger) setTrigger(name string) {
	switch name {
	case triggerWorkflowDispatch:
		t.WorkflowDispatch = &rawWorkflowDispatch{}
	case triggerRepositoryDispatch:
		t.RepositoryDispatch = &rawRepositoryDispatch{}
	}
}

type namedInput struct {
	name string
	raw  RawInput
}

// orderedInputs keeps inputs in the order they are declared. A Go map
// would lose that order, and the first declared input decides expansion.
type orderedInputs []namedInput

func (o *orderedInputs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: inputs must be a mapping", node.Line)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	inputs := make(orderedInputs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate input %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		var raw RawInput
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("input %q: %w", key.Value, err)
		}
		inputs = append(inputs, namedInput{name: key.Value, raw: raw})
	}

	*o = inputs
	return nil
}

// stringList accepts either a single scalar or a sequence of scalars.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = stringList{node.Value}
		return nil
	}
	var items []string
	if err := node.Decode(&items); err != nil {
		return err
	}
	*s = items
	return nil
}
