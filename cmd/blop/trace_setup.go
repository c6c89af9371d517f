package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"blop/internal/trace"
)

// setupTracing reads the trace flags and attaches a tracer to the command
// context. The returned ring is non-nil when the mode keeps one.
func setupTracing(cmd *cobra.Command) (*trace.RingTracer, func(), error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return nil, nil, err
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, nil, err
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, nil, err
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, nil, err
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "--trace-level")
	}
	// --trace alone implies phase-level tracing
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil, func() {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "--trace-mode")
	}

	tracer, ring, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "create tracer")
	}
	ctx, span := trace.Start(trace.WithTracer(cmd.Context(), tracer), trace.ScopeCommand, cmd.CommandPath())
	cmd.SetContext(ctx)

	cleanup := func() {
		span.End("")
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return ring, cleanup, nil
}
