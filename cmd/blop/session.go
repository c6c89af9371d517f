package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blop/diag"
	"blop/internal/ansi"
)

// session is the per-invocation state built from the global flags.
type session struct {
	bridge  diag.Bridge
	cleanup func()
}

var sess = session{bridge: diag.Nop, cleanup: func() {}}

func (s *session) close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

func setupSession(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return err
	}
	mode, err := ansi.ParseMode(colorFlag)
	if err != nil {
		return err
	}
	ansi.Apply(mode, os.Stderr)

	levelFlag, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	level, err := diag.ParseLevel(levelFlag)
	if err != nil {
		return errors.Wrap(err, "--log-level")
	}

	ring, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	var bridge diag.Bridge = diag.NewWriter(cmd.ErrOrStderr(), diag.WithMinLevel(level), diag.WithColor(!color.NoColor))
	if ring != nil {
		bridge = diag.NewTraced(bridge, ring, cmd.ErrOrStderr())
	}
	sess = session{bridge: bridge, cleanup: cleanup}
	return nil
}
