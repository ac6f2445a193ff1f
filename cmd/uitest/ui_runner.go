package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"uitest/internal/driver"
	"uitest/internal/ui"
)

type checkOutcome struct {
	run *driver.Run
	err error
}

// runCheckWithUI runs driver.CheckFiles while a progress view renders its
// events to out.
func runCheckWithUI(ctx context.Context, out io.Writer, title string, files []string, opts driver.Options) (*driver.Run, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		run, err := driver.CheckFiles(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{run: run, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	// the view may quit early on ctrl-c; keep the workers from blocking
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.run, uiErr
	}
	return outcome.run, outcome.err
}
