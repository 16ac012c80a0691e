package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kyleking/gh-makedispatch/internal/target"
)

// Delimiter separates the entries of a payload fragment. A plain comma
// cannot be used because $(call ...) splits its arguments on commas; the
// dispatch macro turns each delimiter back into a comma with $(subst ...).
const Delimiter = "++|++"

// Fragment serializes the inputs of t in declaration order. Pinned inputs
// are written as literal strings, all others as a $(NAME) reference that
// make expands when the target runs.
func Fragment(t target.Target) string {
	parts := make([]string, 0, len(t.Workflow.Inputs))
	for _, in := range t.Workflow.Inputs {
		value := "$(" + target.VarName(in.Name) + ")"
		if v, ok := t.FixedValue(in.Name); ok {
			value = Literal(v)
		}
		parts = append(parts, fmt.Sprintf(`"%s":"%s"`, Literal(in.Name), value))
	}
	return strings.Join(parts, Delimiter)
}

// Literal escapes s for use inside a JSON string that sits in a
// single-quoted shell word, inside a $(call ...) argument of a recipe.
func Literal(s string) string {
	return makeEscape(shellEscape(jsonEscape(s)))
}

// jsonEscape returns s as the body of a JSON string, without the quotes.
func jsonEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// shellEscape makes s safe inside a single-quoted shell word.
func shellEscape(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

var makeReplacer = strings.NewReplacer(
	"$", "$$",
	",", "$(comma)",
	"(", "$(lparen)",
	")", "$(rparen)",
)

// makeEscape protects characters that make would interpret inside a
// function argument.
func makeEscape(s string) string {
	return makeReplacer.Replace(s)
}
