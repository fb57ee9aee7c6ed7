package runner

import (
	"context"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/session"
)

// DialogResponse is the state of the active dialog for rich clients (HTTP, websocket).
type DialogResponse struct {
	DialogID string `json:"dialog_id,omitempty"`
	View     *View  `json:"view,omitempty"`
	// Done is set once no dialog is active anymore.
	Done bool `json:"done"`
	// Warning carries a non-fatal completion error, such as an unknown next step.
	Warning string `json:"warning,omitempty"`
}

// CurrentView renders the active dialog of g.
func CurrentView(g *session.Game) *DialogResponse {
	it := g.Coordinator.Active()
	if it == nil {
		return &DialogResponse{Done: true}
	}
	v := Render(g.Coordinator.Current(), g.PlayerName())
	return &DialogResponse{
		DialogID: it.Step().Ref().DialogID(),
		View:     &v,
	}
}

// AdvanceAndRender answers the current item and immediately renders what follows,
// so rich clients always receive the item they just reached.
func AdvanceAndRender(ctx context.Context, g *session.Game, answer dialog.Answer) (*DialogResponse, error) {
	it := g.Coordinator.Active()
	if it == nil {
		return nil, domain.ErrNoActiveDialog
	}
	id := it.Step().Ref().DialogID()

	item, err := g.Coordinator.Advance(ctx, answer)
	if item == nil {
		resp := &DialogResponse{DialogID: id, Done: true}
		if err != nil {
			resp.Warning = err.Error()
		}
		return resp, nil
	}
	v := Render(item, g.PlayerName())
	return &DialogResponse{DialogID: id, View: &v}, nil
}
