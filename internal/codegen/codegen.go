// Package codegen turns a blop manifest into Go source: one file per
// [[list]] or [[vector]] table, declaring a named policy type, a container
// alias and a constructor.
package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"blop/diag"
	"blop/gen"
	"blop/internal/trace"
)

// ErrDuplicate marks a name defined twice with different definitions.
var ErrDuplicate = errors.New("duplicate definition")

// ErrGenerate marks a run where at least one output failed.
var ErrGenerate = errors.New("generation failed")

// Unit is one output file.
type Unit struct {
	Entry  Entry
	File   string // absolute
	Status Status
	Err    error
}

// Plan dedups the manifest entries and records each one in reg. Entries that
// repeat an earlier definition exactly are dropped; a name reused with a
// different definition is an ErrDuplicate error.
func Plan(m *Manifest, reg *gen.Registry) ([]Unit, error) {
	if reg == nil {
		reg = gen.Default
	}
	source := filepath.Base(m.Path)
	byFile := make(map[string]int)
	var (
		units []Unit
		probs []string
	)
	for _, e := range m.Entries {
		file := filepath.Join(m.Package.Output, m.Package.Naming.FileName(e.Name))
		key := gen.Key{Elem: elemName(e), Policy: e.Config.Key()}
		site := gen.UseSite{Site: source + ":" + e.Site(), Note: e.Kind + " " + e.Name}
		if i, ok := byFile[file]; ok {
			prev := units[i].Entry
			if !sameDefinition(prev, e) {
				probs = append(probs, fmt.Sprintf("%s: %q conflicts with %s %q", e.Site(), e.Name, prev.Site(), prev.Name))
				continue
			}
			reg.Record(key, Exported(e.Name)+"Policy", site)
			continue
		}
		reg.Record(key, Exported(e.Name)+"Policy", site)
		byFile[file] = len(units)
		units = append(units, Unit{Entry: e, File: file, Status: StatusQueued})
	}
	if len(probs) > 0 {
		return nil, errors.Mark(&ManifestError{Path: m.Path, Problems: probs}, ErrDuplicate)
	}
	return units, nil
}

func sameDefinition(a, b Entry) bool {
	return a.Kind == b.Kind && a.Name == b.Name && a.Type == b.Type &&
		a.Import == b.Import && a.Config == b.Config
}

func elemName(e Entry) string {
	if e.Import == "" {
		return e.Type
	}
	return e.Import + ":" + e.Type
}

// Options configures Run.
type Options struct {
	Manifest string        // path to blop.toml or blop.yaml
	Registry *gen.Registry // nil means gen.Default
	Bridge   diag.Bridge   // nil means diag.Nop
	Sink     Sink          // nil drops events
	Jobs     int           // <= 0 means GOMAXPROCS
	Force    bool          // rewrite outputs even when the cache says they are current
}

// Result is the outcome of Prepare, filled in by Generate.
type Result struct {
	Manifest *Manifest
	Units    []Unit
	Elapsed  time.Duration
	started  time.Time
}

// Count returns the number of units that finished with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, u := range r.Units {
		if u.Status == s {
			n++
		}
	}
	return n
}

func (o Options) sinkAndBridge() (Sink, diag.Bridge) {
	sink, bridge := o.Sink, o.Bridge
	if sink == nil {
		sink = nopSink{}
	}
	if bridge == nil {
		bridge = diag.Nop
	}
	return sink, bridge
}

// Run is Prepare followed by Generate.
func Run(ctx context.Context, opts Options) (*Result, error) {
	res, err := Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	return res, Generate(ctx, res, opts)
}

// Prepare loads and plans the manifest. Nothing is written; the returned
// Result lists the units Generate will emit.
func Prepare(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()
	sink, bridge := opts.sinkAndBridge()

	_, span := trace.Start(ctx, trace.ScopePhase, "codegen.load")
	sink.OnEvent(Event{Stage: StageLoad, Status: StatusWorking})
	m, err := LoadManifest(opts.Manifest)
	if err == nil {
		var units []Unit
		if units, err = Plan(m, opts.Registry); err == nil {
			span.End(fmt.Sprintf("%d units", len(units)))
			sink.OnEvent(Event{Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(started)})
			return &Result{Manifest: m, Units: units, started: started}, nil
		}
	}
	span.End("error")
	code := diag.GenManifest
	if errors.Is(err, ErrDuplicate) {
		code = diag.GenDuplicate
	}
	bridge.Log(diag.LevelError, fmt.Sprintf("%s: %v", code, err))
	sink.OnEvent(Event{Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(started)})
	return nil, err
}

// Generate emits every unit of res in parallel and records each outcome in
// res. A failing output does not stop the others; the returned error, marked
// ErrGenerate, combines every unit error.
func Generate(ctx context.Context, res *Result, opts Options) error {
	if res.started.IsZero() {
		res.started = time.Now()
	}
	sink, bridge := opts.sinkAndBridge()
	err := generate(ctx, res, opts, sink, bridge)
	res.Elapsed = time.Since(res.started)
	return err
}

func generate(ctx context.Context, res *Result, opts Options, sink Sink, bridge diag.Bridge) error {
	m := res.Manifest
	for _, u := range res.Units {
		sink.OnEvent(Event{File: u.File, Stage: StageRender, Status: StatusQueued})
	}
	sink.OnEvent(Event{Stage: StageRender, Status: StatusWorking})
	if err := os.MkdirAll(m.Package.Output, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %q", m.Package.Output)
	}
	cache := OpenCache(m.Package.Output)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "codegen.generate")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range res.Units {
		u := &res.Units[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u.Status, u.Err = emit(gctx, m, u, cache, opts.Force, sink)
			switch {
			case u.Err != nil:
				code := diag.GenRender
				if errors.Is(u.Err, errWrite) {
					code = diag.GenWrite
				}
				bridge.Log(diag.LevelError, fmt.Sprintf("%s: %v", code, u.Err))
			case u.Status == StatusDone:
				bridge.Log(diag.LevelDebug, "wrote "+u.File)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	var errs error
	for _, u := range res.Units {
		if u.Err != nil {
			errs = errors.CombineErrors(errs, u.Err)
		}
	}
	if err := cache.Save(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	span.WithExtra("done", fmt.Sprint(res.Count(StatusDone))).
		WithExtra("unchanged", fmt.Sprint(res.Count(StatusUnchanged)))
	span.End("")
	if waitErr != nil {
		return waitErr
	}
	if errs != nil {
		return errors.Mark(errs, ErrGenerate)
	}
	return nil
}

var errWrite = errors.New("write output")

func emit(ctx context.Context, m *Manifest, u *Unit, cache *Cache, force bool, sink Sink) (Status, error) {
	_, span := trace.Start(ctx, trace.ScopeUnit, filepath.Base(u.File))
	started := time.Now()
	fail := func(stage Stage, err error) (Status, error) {
		span.End("error")
		sink.OnEvent(Event{File: u.File, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return StatusError, err
	}

	sink.OnEvent(Event{File: u.File, Stage: StageRender, Status: StatusWorking})
	src, err := Render(m.Package.Name, filepath.Base(m.Path), u.Entry)
	if err != nil {
		return fail(StageRender, err)
	}
	sink.OnEvent(Event{File: u.File, Stage: StageFormat, Status: StatusWorking})
	src, err = Format(u.File, src)
	if err != nil {
		return fail(StageFormat, err)
	}

	digest := Digest(src)
	if !force && cache.Fresh(u.File, digest) {
		span.End("unchanged")
		sink.OnEvent(Event{File: u.File, Stage: StageWrite, Status: StatusUnchanged, Elapsed: time.Since(started)})
		return StatusUnchanged, nil
	}
	sink.OnEvent(Event{File: u.File, Stage: StageWrite, Status: StatusWorking})
	if err := writeAtomic(u.File, src); err != nil {
		return fail(StageWrite, errors.Mark(errors.Wrapf(err, "write %s", u.File), errWrite))
	}
	cache.Put(u.File, digest)
	span.End("written")
	sink.OnEvent(Event{File: u.File, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(started)})
	return StatusDone, nil
}

// Files returns the output paths of units in order.
func Files(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.File
	}
	return out
}
