package coordinator

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
)

type registration struct {
	id       string
	step     *domain.MissionStep
	mode     domain.TriggerMode
	npc      ports.Character
	location domain.Position
}

// Coordinator owns the dialogs that are waiting for a trigger and the single active playthrough.
// It is not safe for concurrent use: a game session serializes every call.
type Coordinator struct {
	storyline *domain.Storyline
	world     ports.World
	store     dialog.Recorder

	regs  []*registration
	byID  map[string]*registration
	queue []string

	active *dialog.Iterator

	radius float64
	mover  ports.Mover
	tally  dialog.Tally
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRadius sets the proximity threshold. Positions closer than r trigger.
func WithRadius(r float64) Option {
	return func(c *Coordinator) {
		c.radius = r
	}
}

// WithMover sets the effect that runs for steps declaring moveTo.
func WithMover(m ports.Mover) Option {
	return func(c *Coordinator) {
		c.mover = m
	}
}

// WithTally sets the remote counter sink.
func WithTally(t dialog.Tally) Option {
	return func(c *Coordinator) {
		c.tally = t
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = h
	}
}

// New creates a coordinator. world may be nil when every step is queue-triggered.
func New(sl *domain.Storyline, world ports.World, store dialog.Recorder, opts ...Option) *Coordinator {
	c := &Coordinator{
		storyline: sl,
		world:     world,
		store:     store,
		byID:      make(map[string]*registration),
		radius:    2 * domain.TileSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers step under id. NPC steps mark their character, location steps are silent
// and steps with neither are queued to fire on the next poll.
func (c *Coordinator) Add(ctx context.Context, id string, step *domain.MissionStep) error {
	if _, exists := c.byID[id]; exists {
		c.logger.ErrorContext(ctx, "dialog already registered", "dialog", id)
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDialog, id)
	}

	reg := &registration{id: id, step: step, mode: step.TriggerMode()}
	switch reg.mode {
	case domain.TriggerNPC:
		npc, ok := c.character(step.NPCID)
		if !ok {
			c.logger.ErrorContext(ctx, "npc not found", "dialog", id, "npc", step.NPCID)
			return fmt.Errorf("%w: %s (dialog %s)", domain.ErrCharacterNotFound, step.NPCID, id)
		}
		npc.ShowMissionMark(true)
		reg.npc = npc
	case domain.TriggerLocation:
		pos, ok := c.location(step.LocationID)
		if !ok {
			c.logger.ErrorContext(ctx, "location not found", "dialog", id, "location", step.LocationID)
			return fmt.Errorf("%w: %s (dialog %s)", domain.ErrLocationNotFound, step.LocationID, id)
		}
		reg.location = pos
	default:
		c.queue = append(c.queue, id)
	}

	c.regs = append(c.regs, reg)
	c.byID[id] = reg
	c.logger.DebugContext(ctx, "dialog registered", "dialog", id, "trigger", reg.mode)
	return nil
}

// Remove unregisters id. Removing an unknown id is a no-op.
func (c *Coordinator) Remove(id string) {
	reg, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	for i, r := range c.regs {
		if r == reg {
			c.regs = append(c.regs[:i:i], c.regs[i+1:]...)
			break
		}
	}
	for i, q := range c.queue {
		if q == id {
			c.queue = append(c.queue[:i:i], c.queue[i+1:]...)
			break
		}
	}
	if reg.npc != nil && !c.marked(reg.npc.ID()) {
		reg.npc.ShowMissionMark(false)
	}
	c.logger.Debug("dialog unregistered", "dialog", id)
}

// marked reports whether another registration still targets the NPC.
func (c *Coordinator) marked(npcID string) bool {
	for _, r := range c.regs {
		if r.npc != nil && r.npc.ID() == npcID {
			return true
		}
	}
	return false
}

// HasOnGoingDialog reports whether a dialog is being played.
func (c *Coordinator) HasOnGoingDialog() bool {
	return c.active != nil
}

// Active returns the iterator of the dialog being played, or nil.
func (c *Coordinator) Active() *dialog.Iterator {
	return c.active
}

// CheckDialogToTrigger picks the dialog that fires automatically at pos:
// the oldest queued dialog, else the first location in range. Nothing fires during a dialog.
func (c *Coordinator) CheckDialogToTrigger(pos domain.Position) (string, bool) {
	if c.active != nil {
		return "", false
	}
	for len(c.queue) > 0 {
		id := c.queue[0]
		c.queue = c.queue[1:]
		if _, ok := c.byID[id]; ok {
			return id, true
		}
	}
	for _, r := range c.regs {
		if r.mode == domain.TriggerLocation && pos.Distance(r.location) < c.radius {
			return r.id, true
		}
	}
	return "", false
}

// FindNearbyDialog returns the first NPC dialog in range of pos, for player-initiated interaction.
func (c *Coordinator) FindNearbyDialog(pos domain.Position) (string, bool) {
	for _, r := range c.regs {
		if r.mode == domain.TriggerNPC && pos.Distance(r.npc.Position()) < c.radius {
			return r.id, true
		}
	}
	return "", false
}

// StartDialog begins the registered dialog id. A dialog without items completes at once.
func (c *Coordinator) StartDialog(ctx context.Context, id string) error {
	if c.active != nil {
		c.logger.WarnContext(ctx, "dialog already in progress", "dialog", id, "active", c.active.Step().Ref().DialogID())
		return fmt.Errorf("%w: cannot start %s", domain.ErrDialogInProgress, id)
	}
	reg, ok := c.byID[id]
	if !ok {
		c.logger.ErrorContext(ctx, "dialog not registered", "dialog", id)
		return fmt.Errorf("%w: %s", domain.ErrDialogNotFound, id)
	}

	if target := reg.step.MoveTo; target != "" {
		if c.mover == nil {
			c.logger.DebugContext(ctx, "no mover configured, moveTo skipped", "dialog", id, "move_to", target)
		} else if err := c.mover.MoveTo(ctx, target); err != nil {
			c.logger.ErrorContext(ctx, "failed to move player", "dialog", id, "move_to", target, "error", err)
		}
	}

	c.active = dialog.New(reg.step, c.store,
		dialog.WithLogger(c.logger),
		dialog.WithTally(c.tally),
		dialog.WithHooks(c.hooks),
	)
	c.logger.InfoContext(ctx, "dialog started", "dialog", id)
	if c.hooks.OnDialogStart != nil {
		c.hooks.OnDialogStart(ctx, &domain.DialogEvent{
			EventBase: domain.NewEventBase(domain.EventDialogStart),
			DialogID:  id,
			Mission:   reg.step.MissionID,
			Step:      reg.step.ID,
			Trigger:   reg.mode.String(),
		})
	}

	if c.active.Done() {
		return c.DoneDialog(ctx, c.active)
	}
	return nil
}

// DoneDialog finishes a playthrough: it unregisters the step, records its done key,
// bumps the mission counter and registers the resolved next step, if any.
// A next step chosen by an item override is recorded under the step's next key first.
func (c *Coordinator) DoneDialog(ctx context.Context, it *dialog.Iterator) error {
	if it == nil {
		return domain.ErrNoActiveDialog
	}
	c.active = nil

	ref := it.Step().Ref()
	next := it.NextStep()
	c.Remove(ref.DialogID())
	if c.store != nil {
		if next != it.Step().NextStep {
			c.store.SetAndNotify(ctx, ref.NextKey(), next)
		}
		c.store.SetAndNotify(ctx, ref.DoneKey(), domain.DoneValue)
	}
	if c.tally != nil {
		c.tally.Increment(ctx, domain.MissionCounterKey(ref))
	}

	c.logger.InfoContext(ctx, "dialog done", "dialog", ref.DialogID(), "next_step", next)
	if c.hooks.OnDialogDone != nil {
		c.hooks.OnDialogDone(ctx, &domain.DialogEvent{
			EventBase: domain.NewEventBase(domain.EventDialogDone),
			DialogID:  ref.DialogID(),
			Mission:   ref.MissionID,
			Step:      ref.StepID,
			NextStep:  next,
		})
	}

	if next == "" {
		return nil
	}
	nextRef := domain.StepRef{MissionID: ref.MissionID, StepID: next}
	var step *domain.MissionStep
	ok := false
	if c.storyline != nil {
		step, ok = c.storyline.Step(nextRef)
	}
	if !ok {
		c.logger.ErrorContext(ctx, "next step not found", "dialog", ref.DialogID(), "next_step", next)
		return fmt.Errorf("%w: %s", domain.ErrStepNotFound, nextRef.DialogID())
	}
	return c.Add(ctx, nextRef.DialogID(), step)
}

func (c *Coordinator) character(id string) (ports.Character, bool) {
	if c.world == nil {
		return nil, false
	}
	return c.world.Character(id)
}

func (c *Coordinator) location(id string) (domain.Position, bool) {
	if c.world == nil {
		return domain.Position{}, false
	}
	return c.world.Location(id)
}
