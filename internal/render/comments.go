package render

import (
	"fmt"
	"strings"

	"github.com/kyleking/gh-makedispatch/internal/workflow"
)

// LongDefaultThreshold is the length in bytes from which a default value is
// summarized instead of printed.
const LongDefaultThreshold = 256

// CommentLines describes a workflow and its inputs for the header block
// above each generated target.
func CommentLines(def *workflow.Definition) []string {
	lines := make([]string, 0, len(def.Inputs)+1)
	lines = append(lines, fmt.Sprintf("%s (%s)", def.Name, def.File))

	for _, in := range def.Inputs {
		var b strings.Builder
		fmt.Fprintf(&b, "- %s:%s\t %s", strings.ToUpper(in.Name), in.InputType(), in.Description)
		if in.Required {
			b.WriteString(" (required)")
		}
		if in.HasDefault() {
			fmt.Fprintf(&b, " [default: %s]", describeDefault(*in.Default))
		}
		lines = append(lines, b.String())
	}

	for i, line := range lines {
		lines[i] = commentSafe(line)
	}
	return lines
}

func describeDefault(d string) string {
	if len(d) < LongDefaultThreshold {
		return d
	}
	return fmt.Sprintf("(long default: %d bytes)", len(d))
}

var commentReplacer = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`)

// commentSafe keeps a comment on a single Makefile line.
func commentSafe(s string) string {
	return strings.TrimRight(commentReplacer.Replace(s), `\`)
}
