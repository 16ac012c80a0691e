// Package dispatch implements the direct workflow_dispatch call path.
package dispatch

import (
	"fmt"
	"os"
	"strings"
)

// ArgError reports a malformed or unreadable --arg value.
type ArgError struct {
	Arg string
	Err error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("invalid argument %q: %v", e.Arg, e.Err)
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// Input is one name/value pair supplied on the command line.
type Input struct {
	Name  string
	Value string
}

// Inputs keeps command-line inputs in first-seen order.
type Inputs []Input

// Map returns the inputs as a map.
func (in Inputs) Map() map[string]string {
	m := make(map[string]string, len(in))
	for _, i := range in {
		m[i.Name] = i.Value
	}
	return m
}

// set replaces an existing value in place or appends a new one.
func (in Inputs) set(name, value string) Inputs {
	for i := range in {
		if in[i].Name == name {
			in[i].Value = value
			return in
		}
	}
	return append(in, Input{Name: name, Value: value})
}

// FileReader reads the contents of an @file argument.
type FileReader func(path string) ([]byte, error)

// ParseArgs parses name=value and name=@path arguments. The value of an
// @path argument is the raw content of the file. A later argument for the
// same name replaces an earlier one.
func ParseArgs(args []string, readFile FileReader) (Inputs, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}

	var inputs Inputs
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, &ArgError{Arg: arg, Err: fmt.Errorf("expected name=value or name=@file")}
		}
		if name == "" {
			return nil, &ArgError{Arg: arg, Err: fmt.Errorf("input name is empty")}
		}

		if path, isFile := strings.CutPrefix(value, "@"); isFile {
			data, err := readFile(path)
			if err != nil {
				return nil, &ArgError{Arg: arg, Err: fmt.Errorf("cannot read %s: %w", path, err)}
			}
			value = string(data)
		}

		inputs = inputs.set(name, value)
	}
	return inputs, nil
}
