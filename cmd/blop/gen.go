package main

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"blop/gen"
	"blop/internal/codegen"
	"blop/internal/observ"
	"blop/internal/trace"
	"blop/internal/ui"
)

var genCmd = &cobra.Command{
	Use:   "gen [dir]",
	Short: "Generate named container types from blop.toml",
	Long: `Generate reads blop.toml (or blop.yaml) from dir or its parents and writes
one Go file per [[list]] and [[vector]] table. Outputs whose content did not
change since the last run are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().String("manifest", "", "path to the manifest (default: search from dir upwards)")
	genCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	genCmd.Flags().Bool("timings", false, "print phase timings")
	genCmd.Flags().Bool("force", false, "rewrite outputs even when unchanged")
	genCmd.Flags().Int("jobs", 0, "parallel renders (0 = GOMAXPROCS)")
}

// resolveManifest returns the --manifest flag or searches from the first
// argument upwards.
func resolveManifest(cmd *cobra.Command, args []string) (string, error) {
	if cmd.Flags().Lookup("manifest") != nil {
		if path, err := cmd.Flags().GetString("manifest"); err != nil {
			return "", err
		} else if path != "" {
			return path, nil
		}
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path, ok, err := codegen.FindManifest(dir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Newf("no %s found in %s or its parents", codegen.ManifestNames[0], dir)
	}
	return path, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	path, err := resolveManifest(cmd, args)
	if err != nil {
		return err
	}
	timer := observ.NewTimer()

	ctx := cmd.Context()
	opts := codegen.Options{
		Manifest: path,
		Registry: gen.NewRegistry(),
		Bridge:   sess.bridge,
		Jobs:     jobs,
		Force:    force,
	}
	var res *codegen.Result
	err = timer.Measure("load", func() error {
		res, err = codegen.Prepare(ctx, opts)
		return err
	})
	if err != nil {
		return err
	}

	idx := timer.Begin("generate")
	if shouldUseTUI(mode) {
		title := fmt.Sprintf("blop gen %s", filepath.Base(path))
		err = runGenWithUI(ctx, title, res, opts)
	} else {
		opts.Sink = ui.NewLineSink(cmd.OutOrStdout(), res.Manifest.Root)
		err = codegen.Generate(ctx, res, opts)
	}
	timer.End(idx, fmt.Sprintf("%d files", len(res.Units)))
	ev := trace.Point(trace.ScopePhase, "gen.summary", summary(res))
	trace.FromContext(ctx).Emit(&ev)

	fmt.Fprintln(cmd.OutOrStdout(), summary(res))
	if showTimings {
		if werr := timer.WriteSummary(cmd.ErrOrStderr()); werr != nil {
			return werr
		}
	}
	return err
}

func summary(res *codegen.Result) string {
	return fmt.Sprintf("%d written, %d unchanged, %d failed",
		res.Count(codegen.StatusDone), res.Count(codegen.StatusUnchanged), res.Count(codegen.StatusError))
}
