package codegen

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"

	"blop/policy"
)

// LibraryPath is the import path prefix of the container packages.
const LibraryPath = "blop"

const unitTemplate = `// Code generated by blop gen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
{{- if .Import}}
	"{{.Import}}"
{{end}}
	"{{.Lib}}/policy"
	"{{.Lib}}/{{.Kind}}"
)

// {{.Policy}} is the policy of {{.Ident}}: {{summary .Kind .Config}}.
type {{.Policy}} struct{ policy.Defaults }

func ({{.Policy}}) Bounds() policy.Bounds { return policy.{{bounds .Config.Bounds}} }

func ({{.Policy}}) EmptyPop() policy.EmptyPop { return policy.{{emptyPop .Config.EmptyPop}} }
{{- if eq .Config.Linkage.String "singly"}}

func ({{.Policy}}) Linkage() policy.Linkage { return policy.Singly }
{{- end}}
{{- if ne .Config.GrowthFactor 2.0}}

func ({{.Policy}}) GrowthFactor() float64 { return {{float .Config.GrowthFactor}} }
{{- end}}
{{- if .Config.Shrink}}

func ({{.Policy}}) Shrink() bool { return true }
{{- end}}

// {{.Ident}} is a {{.Kind}} of {{.Type}}.
type {{.Ident}} = {{.Kind}}.{{.Container}}[{{.Type}}, {{.Policy}}]

// New{{.Ident}} returns an empty {{.Ident}} named {{printf "%q" .Name}}.
func New{{.Ident}}(opts ...{{.Kind}}.Option) (*{{.Ident}}, error) {
	return {{.Kind}}.New[{{.Type}}, {{.Policy}}](append([]{{.Kind}}.Option{ {{- .Kind}}.WithName({{printf "%q" .Name}})}, opts...)...)
}
`

var tmpl = template.Must(template.New("unit").Funcs(template.FuncMap{
	"bounds": func(b policy.Bounds) string {
		switch b {
		case policy.BoundsCheckedAbort:
			return "BoundsCheckedAbort"
		case policy.BoundsCheckedResult:
			return "BoundsCheckedResult"
		}
		return "BoundsDisabled"
	},
	"emptyPop": func(p policy.EmptyPop) string {
		switch p {
		case policy.PopAbort:
			return "PopAbort"
		case policy.PopError:
			return "PopError"
		}
		return "PopSentinel"
	},
	// vectors have no linkage, so it is left out of their summary
	"summary": func(kind string, c policy.Config) string {
		key := c.Key()
		if kind != "vector" {
			return key
		}
		parts := strings.Split(key, "/")
		return strings.Join(append(parts[:2:2], parts[3:]...), "/")
	},
	"float": func(f float64) string {
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	},
}).Parse(unitTemplate))

type unitData struct {
	Source    string
	Package   string
	Lib       string
	Kind      string
	Container string
	Import    string
	Name      string
	Ident     string
	Policy    string
	Type      string
	Config    policy.Config
}

// Render returns the unformatted source of e.
func Render(pkg, source string, e Entry) ([]byte, error) {
	container := "List"
	if e.Kind == "vector" {
		container = "Vector"
	}
	ident := Exported(e.Name)
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, unitData{
		Source:    source,
		Package:   pkg,
		Lib:       LibraryPath,
		Kind:      e.Kind,
		Container: container,
		Import:    e.Import,
		Name:      e.Name,
		Ident:     ident,
		Policy:    ident + "Policy",
		Type:      e.Type,
		Config:    e.Config,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", e.Site())
	}
	return buf.Bytes(), nil
}

// Format runs goimports formatting over src. Imports are sorted and grouped
// but never resolved, so formatting does not depend on the build environment.
func Format(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "format %s", filename)
	}
	return out, nil
}
