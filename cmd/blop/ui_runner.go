package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"blop/internal/codegen"
	"blop/internal/ui"
)

// runGenWithUI generates the prepared units while a Bubble Tea program
// renders their events.
func runGenWithUI(ctx context.Context, title string, res *codegen.Result, opts codegen.Options) error {
	events := make(chan codegen.Event, 256)
	outcomeCh := make(chan error, 1)

	go func() {
		opts.Sink = ui.ChannelSink{Ch: events}
		err := codegen.Generate(ctx, res, opts)
		outcomeCh <- err
		close(events)
	}()

	model := ui.NewProgressModel(title, res.Manifest.Root, codegen.Files(res.Units), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	for range events {
		// drain so codegen can finish if the program quit early
	}
	err := <-outcomeCh
	if uiErr != nil {
		return uiErr
	}
	return err
}
