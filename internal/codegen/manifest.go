package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"blop/policy"
)

// ManifestNames are searched, in order, in each directory.
var ManifestNames = []string{"blop.toml", "blop.yaml", "blop.yml"}

// ErrManifest marks every manifest problem.
var ErrManifest = errors.New("invalid generation manifest")

// ManifestError lists every problem found in one manifest.
type ManifestError struct {
	Path     string
	Problems []string
}

func (e *ManifestError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", e.Path, e.Problems[0])
	}
	return fmt.Sprintf("%s: %d problems:\n  %s", e.Path, len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// Manifest is a loaded and validated blop.toml or blop.yaml.
type Manifest struct {
	Path    string
	Root    string
	Package Package
	Entries []Entry // lists first, then vectors, in file order
}

// Package is the [package] table.
type Package struct {
	Name   string
	Output string // absolute
	Naming Naming
}

// Entry is one [[list]] or [[vector]] table.
type Entry struct {
	Kind   string // "list" or "vector"
	Index  int    // position within its kind
	Name   string
	Type   string
	Import string
	Config policy.Config
}

// Site names the table in messages, e.g. "list[2]".
func (e Entry) Site() string { return fmt.Sprintf("%s[%d]", e.Kind, e.Index) }

type rawManifest struct {
	Package rawPackage `toml:"package" yaml:"package"`
	List    []rawEntry `toml:"list" yaml:"list"`
	Vector  []rawEntry `toml:"vector" yaml:"vector"`
}

type rawPackage struct {
	Name   *string `toml:"name" yaml:"name"`
	Output string  `toml:"output" yaml:"output"`
	Naming string  `toml:"naming" yaml:"naming"`
}

type rawEntry struct {
	Name     *string  `toml:"name" yaml:"name"`
	Type     *string  `toml:"type" yaml:"type"`
	Import   string   `toml:"import" yaml:"import"`
	Bounds   *string  `toml:"bounds" yaml:"bounds"`
	EmptyPop *string  `toml:"empty_pop" yaml:"empty_pop"`
	Linkage  string   `toml:"linkage" yaml:"linkage"`
	Growth   *float64 `toml:"growth" yaml:"growth"`
	Shrink   bool     `toml:"shrink" yaml:"shrink"`
}

// FindManifest walks up from startDir looking for a manifest.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolve start directory")
	}
	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, errors.Wrapf(err, "stat %q", candidate)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadManifest parses and validates the manifest at path. Validation
// problems are reported together as a *ManifestError.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve manifest path")
	}
	var (
		raw   rawManifest
		probs []string
	)
	switch filepath.Ext(abs) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, errors.Wrap(err, "read manifest")
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s: failed to parse YAML", abs), ErrManifest)
		}
	default:
		meta, err := toml.DecodeFile(abs, &raw)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s: failed to parse TOML", abs), ErrManifest)
		}
		if !meta.IsDefined("package") {
			probs = append(probs, "missing [package]")
		}
		for _, k := range meta.Undecoded() {
			probs = append(probs, fmt.Sprintf("unknown key %q", k.String()))
		}
	}

	m := &Manifest{Path: abs, Root: filepath.Dir(abs)}
	probs = append(probs, m.setPackage(raw.Package)...)
	for i, re := range raw.List {
		probs = append(probs, m.addEntry("list", i, re)...)
	}
	for i, re := range raw.Vector {
		probs = append(probs, m.addEntry("vector", i, re)...)
	}
	if len(m.Entries) == 0 && len(probs) == 0 {
		probs = append(probs, "no [[list]] or [[vector]] tables")
	}
	if len(probs) > 0 {
		return nil, errors.Mark(&ManifestError{Path: abs, Problems: probs}, ErrManifest)
	}
	return m, nil
}

func (m *Manifest) setPackage(raw rawPackage) []string {
	var probs []string
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		probs = append(probs, "missing [package].name")
	} else if !token.IsIdentifier(*raw.Name) {
		probs = append(probs, fmt.Sprintf("[package].name %q is not a Go identifier", *raw.Name))
	} else {
		m.Package.Name = *raw.Name
	}
	out := raw.Output
	if out == "" {
		out = "."
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(m.Root, filepath.FromSlash(out))
	}
	m.Package.Output = out
	naming, err := ParseNaming(raw.Naming)
	if err != nil {
		probs = append(probs, err.Error())
	}
	m.Package.Naming = naming
	return probs
}

func (m *Manifest) addEntry(kind string, index int, raw rawEntry) []string {
	e := Entry{Kind: kind, Index: index, Import: raw.Import}
	var probs []string
	missing := func(field string) {
		probs = append(probs, fmt.Sprintf("%s: missing required field %q", e.Site(), field))
	}
	bad := func(err error) {
		probs = append(probs, fmt.Sprintf("%s: %v", e.Site(), err))
	}

	switch {
	case raw.Name == nil:
		missing("name")
	case !isName(*raw.Name) || Exported(*raw.Name) == "":
		probs = append(probs, fmt.Sprintf("%s: name %q must be letters, digits, '_' or '-'", e.Site(), *raw.Name))
	default:
		e.Name = *raw.Name
	}
	if raw.Type == nil || strings.TrimSpace(*raw.Type) == "" {
		missing("type")
	} else {
		e.Type = strings.TrimSpace(*raw.Type)
	}

	e.Config.GrowthFactor = policy.DefaultGrowthFactor
	if raw.Bounds == nil {
		missing("bounds")
	} else if b, err := policy.ParseBounds(*raw.Bounds); err != nil {
		bad(err)
	} else {
		e.Config.Bounds = b
	}
	if raw.EmptyPop == nil {
		missing("empty_pop")
	} else if p, err := policy.ParseEmptyPop(*raw.EmptyPop); err != nil {
		bad(err)
	} else {
		e.Config.EmptyPop = p
	}
	if kind == "list" {
		l, err := policy.ParseLinkage(raw.Linkage)
		if err != nil {
			bad(err)
		}
		e.Config.Linkage = l
	} else if raw.Linkage != "" {
		probs = append(probs, fmt.Sprintf("%s: linkage applies to lists only", e.Site()))
	}
	if raw.Growth != nil {
		e.Config.GrowthFactor = *raw.Growth
	}
	e.Config.Shrink = raw.Shrink
	if err := e.Config.Validate(); err != nil {
		bad(err)
	}
	if len(probs) == 0 {
		m.Entries = append(m.Entries, e)
	}
	return probs
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return s[0] < '0' || s[0] > '9'
}
