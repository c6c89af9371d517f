package codegen

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Naming is the file naming style of generated code.
type Naming uint8

const (
	Snake Naming = iota // int_stack.go
	Camel               // intStack.go
)

func (n Naming) String() string {
	if n == Camel {
		return "camel"
	}
	return "snake"
}

// ParseNaming reads [package].naming. Empty means Snake.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snake":
		return Snake, nil
	case "camel":
		return Camel, nil
	}
	return Snake, errors.Newf("[package].naming %q (expected: camel|snake)", s)
}

// Casers carry state, so each call builds its own.
func title(s string) string { return cases.Title(language.Und, cases.NoLower).String(s) }

func lower(s string) string { return cases.Lower(language.Und).String(s) }

// words splits "int_stack", "int-stack" and "intStack" into lower-case words.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, lower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// Exported returns the exported Go identifier for name: "int_stack" -> "IntStack".
func Exported(name string) string {
	var sb strings.Builder
	for _, w := range words(name) {
		sb.WriteString(title(w))
	}
	return sb.String()
}

// FileName returns the generated file name for name in style n.
func (n Naming) FileName(name string) string {
	ws := words(name)
	if n == Camel {
		for i := 1; i < len(ws); i++ {
			ws[i] = title(ws[i])
		}
		return strings.Join(ws, "") + ".go"
	}
	return strings.Join(ws, "_") + ".go"
}
