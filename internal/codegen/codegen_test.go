package codegen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/gen"
	"blop/policy"
)

const sampleTOML = `
[package]
name = "containers"
output = "gen"

[[list]]
name = "int_stack"
type = "int"
bounds = "checked-result"
empty_pop = "error"

[[list]]
name = "names"
type = "string"
bounds = "checked-abort"
empty_pop = "abort"
linkage = "singly"

[[vector]]
name = "samples"
type = "time.Duration"
import = "time"
bounds = "disabled"
empty_pop = "sentinel"
growth = 1.5
shrink = true

[[list]]
name = "int_stack"
type = "int"
bounds = "checked-result"
empty_pop = "error"
`

func writeManifest(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadManifestTOML(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, "blop.toml", sampleTOML))
	require.NoError(t, err)
	require.Equal(t, "containers", m.Package.Name)
	require.Equal(t, filepath.Join(m.Root, "gen"), m.Package.Output)
	require.Equal(t, Snake, m.Package.Naming)
	require.Len(t, m.Entries, 4)

	names := m.Entries[1]
	require.Equal(t, "list[1]", names.Site())
	require.Equal(t, policy.Singly, names.Config.Linkage)
	require.Equal(t, policy.BoundsCheckedAbort, names.Config.Bounds)

	samples := m.Entries[3]
	require.Equal(t, "vector[0]", samples.Site())
	require.Equal(t, 1.5, samples.Config.GrowthFactor)
	require.True(t, samples.Config.Shrink)
	require.Equal(t, "time", samples.Import)
}

func TestLoadManifestYAML(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, "blop.yaml", `
package:
  name: containers
  naming: camel
vector:
  - name: byte_buf
    type: byte
    bounds: checked-result
    empty_pop: error
`))
	require.NoError(t, err)
	require.Equal(t, Camel, m.Package.Naming)
	require.Equal(t, m.Root, m.Package.Output)
	require.Len(t, m.Entries, 1)
	require.Equal(t, policy.DefaultGrowthFactor, m.Entries[0].Config.GrowthFactor)
}

func TestLoadManifestMissingFields(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "blop.toml", `
[package]
name = "containers"

[[list]]
name = "ok"
type = "int"
bounds = "disabled"
empty_pop = "sentinel"

[[list]]
type = "int"
empty_pop = "error"

[[vector]]
name = "v"
bounds = "disabled"
empty_pop = "sentinel"
linkage = "singly"
growth = 1.0
`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrManifest))
	var me *ManifestError
	require.True(t, errors.As(err, &me))
	require.Contains(t, me.Problems, `list[1]: missing required field "name"`)
	require.Contains(t, me.Problems, `list[1]: missing required field "bounds"`)
	require.Contains(t, me.Problems, `vector[0]: missing required field "type"`)
	require.Contains(t, me.Problems, "vector[0]: linkage applies to lists only")
	require.Contains(t, err.Error(), "growth factor")
	require.True(t, strings.HasPrefix(err.Error(), me.Path))
}

func TestLoadManifestUnknownKeys(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "blop.toml", `
[package]
name = "containers"
colour = "blue"

[[list]]
name = "l"
type = "int"
bounds = "disabled"
empty_pop = "sentinel"
`))
	require.True(t, errors.Is(err, ErrManifest))
	require.Contains(t, err.Error(), `unknown key "package.colour"`)

	_, err = LoadManifest(writeManifest(t, "blop.toml", `[[list]]
name = "l"
`))
	require.Contains(t, err.Error(), "missing [package]")
}

func TestFindManifest(t *testing.T) {
	path := writeManifest(t, "blop.yml", "package: {name: x}\n")
	deep := filepath.Join(filepath.Dir(path), "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	found, ok, err := FindManifest(deep)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, path, found)
}

func TestPlanDedupsAndRecords(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, "blop.toml", sampleTOML))
	require.NoError(t, err)
	reg := gen.NewRegistry()
	units, err := Plan(m, reg)
	require.NoError(t, err)
	require.Len(t, units, 3)
	require.Equal(t, filepath.Join(m.Package.Output, "int_stack.go"), units[0].File)

	require.Equal(t, 3, reg.Len())
	e, ok := reg.Lookup(gen.Key{Elem: "int", Policy: "checked-result/error/doubly/2"})
	require.True(t, ok)
	require.Equal(t, []string{"IntStackPolicy"}, e.Policies)
	require.Equal(t, []gen.UseSite{
		{Site: "blop.toml:list[0]", Note: "list int_stack"},
		{Site: "blop.toml:list[2]", Note: "list int_stack"},
	}, e.UseSites)
}

func TestPlanRejectsConflictingName(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, "blop.toml", `
[package]
name = "containers"

[[list]]
name = "queue"
type = "int"
bounds = "disabled"
empty_pop = "sentinel"

[[vector]]
name = "queue"
type = "int"
bounds = "disabled"
empty_pop = "sentinel"
`))
	require.NoError(t, err)
	_, err = Plan(m, gen.NewRegistry())
	require.True(t, errors.Is(err, ErrDuplicate))
	require.Contains(t, err.Error(), `vector[0]: "queue" conflicts with list[0] "queue"`)
}

func TestRenderList(t *testing.T) {
	e := Entry{Kind: "list", Name: "names", Type: "string", Config: policy.Config{
		Bounds: policy.BoundsCheckedAbort, EmptyPop: policy.PopAbort, Linkage: policy.Singly, GrowthFactor: 2,
	}}
	src, err := Render("containers", "blop.toml", e)
	require.NoError(t, err)
	src, err = Format("names.go", src)
	require.NoError(t, err)
	out := string(src)
	require.Contains(t, out, "// Code generated by blop gen from blop.toml. DO NOT EDIT.")
	require.Contains(t, out, "import (\n\t\"blop/list\"\n\t\"blop/policy\"\n)")
	require.Contains(t, out, "// NamesPolicy is the policy of Names: checked-abort/abort/singly/2.")
	require.Contains(t, out, "type NamesPolicy struct{ policy.Defaults }")
	require.Contains(t, out, "func (NamesPolicy) Bounds() policy.Bounds { return policy.BoundsCheckedAbort }")
	require.Contains(t, out, "func (NamesPolicy) Linkage() policy.Linkage { return policy.Singly }")
	require.NotContains(t, out, "GrowthFactor")
	require.Contains(t, out, "type Names = list.List[string, NamesPolicy]")
	require.Contains(t, out, `return list.New[string, NamesPolicy](append([]list.Option{list.WithName("names")}, opts...)...)`)
}

func TestRenderVector(t *testing.T) {
	e := Entry{Kind: "vector", Name: "samples", Type: "time.Duration", Import: "time", Config: policy.Config{
		EmptyPop: policy.PopSentinel, GrowthFactor: 3, Shrink: true,
	}}
	src, err := Render("containers", "blop.toml", e)
	require.NoError(t, err)
	src, err = Format("samples.go", src)
	require.NoError(t, err)
	out := string(src)
	require.Contains(t, out, "import (\n\t\"time\"\n\n\t\"blop/policy\"\n\t\"blop/vector\"\n)")
	require.Contains(t, out, "// SamplesPolicy is the policy of Samples: disabled/sentinel/3/shrink.")
	require.Contains(t, out, "func (SamplesPolicy) GrowthFactor() float64 { return 3.0 }")
	require.Contains(t, out, "func (SamplesPolicy) Shrink() bool { return true }")
	require.Contains(t, out, "type Samples = vector.Vector[time.Duration, SamplesPolicy]")
}

type events struct {
	mu  sync.Mutex
	all []Event
}

func (e *events) OnEvent(ev Event) {
	e.mu.Lock()
	e.all = append(e.all, ev)
	e.mu.Unlock()
}

func (e *events) terminal(file string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	var last Status
	for _, ev := range e.all {
		if ev.File == file && ev.Status.Terminal() {
			last = ev.Status
		}
	}
	return last
}

func TestRunWritesThenReportsUnchanged(t *testing.T) {
	path := writeManifest(t, "blop.toml", sampleTOML)
	rec := diag.NewRecorder(diag.LevelDebug)
	sink := &events{}
	opts := Options{Manifest: path, Registry: gen.NewRegistry(), Bridge: rec, Sink: sink, Jobs: 2}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 3, res.Count(StatusDone))
	for _, f := range Files(res.Units) {
		require.FileExists(t, f)
		require.Equal(t, StatusDone, sink.terminal(f))
	}
	require.FileExists(t, filepath.Join(res.Manifest.Package.Output, CacheFile))
	require.Len(t, rec.Messages(diag.LevelDebug), 3)

	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 3, res.Count(StatusUnchanged))

	// A deleted output is rewritten even though its digest is cached.
	require.NoError(t, os.Remove(res.Units[1].File))
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, StatusDone, res.Units[1].Status)
	require.Equal(t, 2, res.Count(StatusUnchanged))

	opts.Force = true
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 3, res.Count(StatusDone))
}

func TestPrepareThenGenerate(t *testing.T) {
	path := writeManifest(t, "blop.toml", sampleTOML)
	opts := Options{Manifest: path, Registry: gen.NewRegistry()}

	res, err := Prepare(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Units, 3)
	for _, f := range Files(res.Units) {
		require.NoFileExists(t, f)
	}
	require.NoDirExists(t, res.Manifest.Package.Output)

	require.NoError(t, Generate(context.Background(), res, opts))
	require.Equal(t, 3, res.Count(StatusDone))
	require.Positive(t, res.Elapsed)
	for _, f := range Files(res.Units) {
		require.FileExists(t, f)
	}
}

func TestRunReportsManifestErrors(t *testing.T) {
	path := writeManifest(t, "blop.toml", "[package]\nname = \"x\"\n[[list]]\nname = \"l\"\n")
	rec := diag.NewRecorder(diag.LevelDebug)
	sink := &events{}
	_, err := Run(context.Background(), Options{Manifest: path, Registry: gen.NewRegistry(), Bridge: rec, Sink: sink})
	require.True(t, errors.Is(err, ErrManifest))
	errs := rec.Messages(diag.LevelError)
	require.Len(t, errs, 1)
	require.True(t, strings.HasPrefix(errs[0], "BLP4001: "))
	require.Equal(t, StatusError, sink.terminal(""))
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(file, []byte("package a\n"), 0o644))
	d := Digest([]byte("package a\n"))

	c := OpenCache(dir)
	require.False(t, c.Fresh(file, d))
	c.Put(file, d)
	require.NoError(t, c.Save())

	c = OpenCache(dir)
	require.True(t, c.Fresh(file, d))
	require.False(t, c.Fresh(file, Digest([]byte("package b\n"))))

	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheFile), []byte("garbage"), 0o644))
	require.False(t, OpenCache(dir).Fresh(file, d))
}

func TestNaming(t *testing.T) {
	require.Equal(t, "IntStack", Exported("int_stack"))
	require.Equal(t, "HttpQueue", Exported("HTTPQueue"))
	require.Equal(t, "ByteBuf", Exported("byte-buf"))
	require.Equal(t, "int_stack.go", Snake.FileName("intStack"))
	require.Equal(t, "intStack.go", Camel.FileName("int_stack"))
	require.Equal(t, "http_queue.go", Snake.FileName("HTTPQueue"))
	_, err := ParseNaming("kebab")
	require.Error(t, err)
}
