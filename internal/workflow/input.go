package workflow

// RawInput is an input declaration as written in the workflow file.
type RawInput struct {
	Description string   `yaml:"description"`
	Required    bool     `yaml:"required"`
	Default     *string  `yaml:"default"`
	Type        string   `yaml:"type"`
	Options     []string `yaml:"options"`
}

// Normalize converts a raw declaration into an Input. A declared default
// demotes a required input to optional; nothing else is transformed.
func Normalize(name string, raw RawInput) Input {
	return Input{
		Name:        name,
		Description: raw.Description,
		Required:    raw.Required && raw.Default == nil,
		Default:     raw.Default,
		Type:        raw.Type,
		Options:     raw.Options,
	}
}
