package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// RunUpTUI runs fn under a Bubble Tea dashboard and returns fn's error.
// fn runs in a background goroutine and reports through obs. Quitting the
// dashboard cancels the context passed to fn.
func RunUpTUI(
	ctx context.Context,
	clusterName string,
	phases []string,
	fn func(ctx context.Context, obs provisioning.Observer) error,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewUpModel(clusterName, phases)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, NewObserver(p))
		errCh <- err
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if fm, ok := finalModel.(Model); ok && !fm.Done && fm.Err == nil {
		cancel()
	}
	runErr := <-errCh
	if runErr != nil {
		return runErr
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
