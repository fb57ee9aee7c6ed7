package runner

import (
	"context"
	"fmt"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/session"
)

// Presenter shows dialog items to the player and collects the answers.
type Presenter interface {
	// Present shows v and blocks until the player acknowledges or answers it.
	Present(ctx context.Context, v View) (dialog.Answer, error)
	// Notice shows a message outside of any dialog.
	Notice(ctx context.Context, msg string) error
}

// Play runs the active dialog of g to completion. It returns at once when no dialog is active.
// Completion errors (an unknown next step) are returned after the dialog has ended.
func Play(ctx context.Context, g *session.Game, p Presenter) error {
	item := g.Coordinator.Current()
	for item != nil {
		answer, err := p.Present(ctx, Render(item, g.PlayerName()))
		if err != nil {
			return fmt.Errorf("present error: %w", err)
		}
		item, err = g.Coordinator.Advance(ctx, answer)
		if err != nil {
			return err
		}
	}
	return nil
}
