package coordinator

import (
	"context"
	"fmt"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
)

// Current returns the item the player is looking at, or nil when no dialog is active.
func (c *Coordinator) Current() domain.DialogItem {
	if c.active == nil {
		return nil
	}
	return c.active.Current()
}

// Advance answers the current item. When the dialog ends it calls DoneDialog
// and returns a nil item together with any error DoneDialog reported.
func (c *Coordinator) Advance(ctx context.Context, answer dialog.Answer) (domain.DialogItem, error) {
	it := c.active
	if it == nil {
		return nil, domain.ErrNoActiveDialog
	}
	if item := it.Next(ctx, answer); item != nil {
		return item, nil
	}
	return nil, c.DoneDialog(ctx, it)
}

// Tick is the per-frame poll: it starts whatever CheckDialogToTrigger selects.
func (c *Coordinator) Tick(ctx context.Context, pos domain.Position) (string, bool) {
	id, ok := c.CheckDialogToTrigger(pos)
	if !ok {
		return "", false
	}
	if err := c.StartDialog(ctx, id); err != nil {
		return "", false
	}
	return id, true
}

// Interact starts the nearest NPC dialog. It returns an empty id when nobody is in range.
// Interacting during a dialog is refused, which happens routinely with a held key.
func (c *Coordinator) Interact(ctx context.Context, pos domain.Position) (string, error) {
	if c.active != nil {
		c.logger.WarnContext(ctx, "interact ignored, dialog in progress")
		return "", domain.ErrDialogInProgress
	}
	id, ok := c.FindNearbyDialog(pos)
	if !ok {
		return "", nil
	}
	if err := c.StartDialog(ctx, id); err != nil {
		return "", fmt.Errorf("failed to start dialog: %w", err)
	}
	return id, nil
}

// Hint summarizes a registered dialog for the mission panel.
type Hint struct {
	DialogID     string `json:"dialog_id"`
	MissionID    string `json:"mission_id"`
	MissionTitle string `json:"mission_title"`
	StepTitle    string `json:"step_title"`
	Description  string `json:"description"`
	Trigger      string `json:"trigger"`
	// Target is the NPC or location id, empty for queued dialogs.
	Target string `json:"target,omitempty"`
}

// Hints lists the registered dialogs in registration order. It never mutates state.
func (c *Coordinator) Hints() []Hint {
	hints := make([]Hint, 0, len(c.regs))
	for _, r := range c.regs {
		h := Hint{
			DialogID:    r.id,
			MissionID:   r.step.MissionID,
			StepTitle:   r.step.Title,
			Description: r.step.Description,
			Trigger:     r.mode.String(),
		}
		if c.storyline != nil {
			if m, ok := c.storyline.Mission(r.step.MissionID); ok {
				h.MissionTitle = m.Title
			}
		}
		switch r.mode {
		case domain.TriggerNPC:
			h.Target = r.step.NPCID
		case domain.TriggerLocation:
			h.Target = r.step.LocationID
		}
		hints = append(hints, h)
	}
	return hints
}

// Registrations returns the registered dialog ids in registration order.
func (c *Coordinator) Registrations() []string {
	ids := make([]string, 0, len(c.regs))
	for _, r := range c.regs {
		ids = append(ids, r.id)
	}
	return ids
}
