package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/coordinator"
	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// elder stands at (128,64), the well at (320,320).
func newWorld() *memory.World {
	def := &memory.WorldDef{
		Characters: []memory.CharacterDef{{ID: "elder", Name: "Elder", X: 128, Y: 64}},
		Locations:  []memory.LocationDef{{ID: "well", X: 320, Y: 320}, {ID: "square", X: 640, Y: 640}},
	}
	return def.Instantiate()
}

func line(text string) domain.DialogItem { return &domain.Line{Line: text} }

func newStoryline() *domain.Storyline {
	sl := domain.NewStoryline()
	m := domain.NewMission("m", "Mission", "", domain.DefaultFirstStep, nil)
	add := func(s *domain.MissionStep, items ...domain.DialogItem) {
		s.Dialog = domain.NewDialog(domain.StepRef{})
		for _, it := range items {
			s.Dialog.Add(it)
		}
		m.AddStep(s)
	}
	add(&domain.MissionStep{ID: "npc", Title: "Talk to the elder", NPCID: "elder", NextStep: "loc"}, line("hello"), line("bye"))
	add(&domain.MissionStep{ID: "loc", LocationID: "well", NextStep: "queue"}, line("a dry well"))
	add(&domain.MissionStep{ID: "queue"}, line("queued"))
	add(&domain.MissionStep{ID: "empty"})
	add(&domain.MissionStep{ID: "ghost-npc", NPCID: "ghost"}, line("boo"))
	add(&domain.MissionStep{ID: "ghost-loc", LocationID: "atlantis"}, line("blub"))
	add(&domain.MissionStep{ID: "move", MoveTo: "square", NextStep: "missing"}, line("teleported"))
	sl.AddMission(m)
	return sl
}

func step(t *testing.T, sl *domain.Storyline, id string) *domain.MissionStep {
	s, ok := sl.Step(domain.StepRef{MissionID: "m", StepID: id})
	require.True(t, ok)
	return s
}

type fixture struct {
	sl    *domain.Storyline
	world *memory.World
	store *answers.Store
	c     *coordinator.Coordinator
}

func setup(opts ...coordinator.Option) *fixture {
	f := &fixture{sl: newStoryline(), world: newWorld(), store: answers.New()}
	f.c = coordinator.New(f.sl, f.world, f.store, opts...)
	return f
}

func (f *fixture) marked(id string) bool {
	for _, c := range f.world.Characters() {
		if c.ID() == id {
			return c.HasMissionMark()
		}
	}
	return false
}

func TestAdd_TriggerModes(t *testing.T) {
	ctx := context.Background()
	f := setup()

	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))
	assert.True(t, f.marked("elder"))

	require.NoError(t, f.c.Add(ctx, "m/loc", step(t, f.sl, "loc")))
	require.NoError(t, f.c.Add(ctx, "m/queue", step(t, f.sl, "queue")))

	err := f.c.Add(ctx, "m/ghost-npc", step(t, f.sl, "ghost-npc"))
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
	err = f.c.Add(ctx, "m/ghost-loc", step(t, f.sl, "ghost-loc"))
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	assert.Equal(t, []string{"m/npc", "m/loc", "m/queue"}, f.c.Registrations())
}

func TestAdd_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := setup()

	require.NoError(t, f.c.Add(ctx, "m/s1", step(t, f.sl, "loc")))
	err := f.c.Add(ctx, "m/s1", step(t, f.sl, "loc"))

	assert.ErrorIs(t, err, domain.ErrDuplicateDialog)
	assert.Equal(t, []string{"m/s1"}, f.c.Registrations())
}

func TestRemove_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))
	require.NoError(t, f.c.Add(ctx, "m/loc", step(t, f.sl, "loc")))

	f.c.Remove("m/npc")
	once := f.c.Registrations()
	f.c.Remove("m/npc")

	assert.Equal(t, once, f.c.Registrations())
	assert.Equal(t, []string{"m/loc"}, once)
	assert.False(t, f.marked("elder"))

	f.c.Remove("never-registered")
}

func TestRemove_KeepsMarkWhileNPCHasDialogs(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "a", step(t, f.sl, "npc")))
	require.NoError(t, f.c.Add(ctx, "b", step(t, f.sl, "npc")))

	f.c.Remove("a")
	assert.True(t, f.marked("elder"))
	f.c.Remove("b")
	assert.False(t, f.marked("elder"))
}

func TestCheckDialogToTrigger(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/loc", step(t, f.sl, "loc")))
	require.NoError(t, f.c.Add(ctx, "q1", step(t, f.sl, "queue")))
	require.NoError(t, f.c.Add(ctx, "q2", step(t, f.sl, "queue")))

	far := domain.Position{X: 0, Y: 0}
	near := domain.Position{X: 320, Y: 320 + 63}

	id, ok := f.c.CheckDialogToTrigger(near)
	assert.True(t, ok)
	assert.Equal(t, "q1", id, "queued dialogs fire first, oldest first")

	f.c.Remove("q2")
	id, ok = f.c.CheckDialogToTrigger(near)
	assert.True(t, ok)
	assert.Equal(t, "m/loc", id, "stale queue entries are skipped")

	_, ok = f.c.CheckDialogToTrigger(far)
	assert.False(t, ok)

	_, ok = f.c.CheckDialogToTrigger(domain.Position{X: 320, Y: 320 + 64})
	assert.False(t, ok, "the threshold is strict")
}

func TestFindNearbyDialog(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/loc", step(t, f.sl, "loc")))
	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))

	id, ok := f.c.FindNearbyDialog(domain.Position{X: 128, Y: 100})
	assert.True(t, ok)
	assert.Equal(t, "m/npc", id)

	_, ok = f.c.FindNearbyDialog(domain.Position{X: 320, Y: 320})
	assert.False(t, ok, "locations are not interactable")

	id, ok = f.c.CheckDialogToTrigger(domain.Position{X: 128, Y: 64})
	assert.False(t, ok, "npcs never trigger automatically")
	assert.Empty(t, id)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/queue", step(t, f.sl, "queue")))
	require.NoError(t, f.c.Add(ctx, "m/loc", step(t, f.sl, "loc")))
	before := len(f.c.Registrations())
	keysBefore := f.store.Keys()

	require.NoError(t, f.c.StartDialog(ctx, "m/queue"))
	it := f.c.Active()
	require.NotNil(t, it)
	for it.Current() != nil {
		it.Next(ctx, dialog.NoAnswer())
	}
	require.NoError(t, f.c.DoneDialog(ctx, it))

	assert.Len(t, f.c.Registrations(), before-1)
	assert.Equal(t, []string{"m/loc"}, f.c.Registrations())
	assert.Len(t, f.store.Keys(), len(keysBefore)+1)
	v, ok := f.store.Get("m/queue/done")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestSingleActiveDialog(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))
	require.NoError(t, f.c.Add(ctx, "m/queue", step(t, f.sl, "queue")))
	assert.False(t, f.c.HasOnGoingDialog())

	require.NoError(t, f.c.StartDialog(ctx, "m/npc"))
	assert.True(t, f.c.HasOnGoingDialog())

	_, ok := f.c.CheckDialogToTrigger(domain.Position{})
	assert.False(t, ok)
	assert.ErrorIs(t, f.c.StartDialog(ctx, "m/queue"), domain.ErrDialogInProgress)
	_, err := f.c.Interact(ctx, domain.Position{X: 128, Y: 64})
	assert.ErrorIs(t, err, domain.ErrDialogInProgress)

	item, err := f.c.Advance(ctx, dialog.NoAnswer())
	require.NoError(t, err)
	assert.Equal(t, "bye", item.Text())
	assert.True(t, f.c.HasOnGoingDialog())

	item, err = f.c.Advance(ctx, dialog.NoAnswer())
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.False(t, f.c.HasOnGoingDialog())

	id, ok := f.c.CheckDialogToTrigger(domain.Position{})
	assert.True(t, ok)
	assert.Equal(t, "m/queue", id)
}

func TestStartDialog_Unknown(t *testing.T) {
	f := setup()
	err := f.c.StartDialog(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDialogNotFound)
	assert.False(t, f.c.HasOnGoingDialog())
}

func TestDoneDialog_ChainsNextStep(t *testing.T) {
	ctx := context.Background()
	var done []*domain.DialogEvent
	f := setup(coordinator.WithHooks(domain.LifecycleHooks{
		OnDialogDone: func(_ context.Context, e *domain.DialogEvent) { done = append(done, e) },
	}))
	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))

	id, err := f.c.Interact(ctx, domain.Position{X: 130, Y: 70})
	require.NoError(t, err)
	assert.Equal(t, "m/npc", id)

	for item := f.c.Current(); item != nil; {
		item, err = f.c.Advance(ctx, dialog.NoAnswer())
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"m/loc"}, f.c.Registrations())
	assert.False(t, f.marked("elder"))
	require.Len(t, done, 1)
	assert.Equal(t, "loc", done[0].NextStep)

	id, ok := f.c.Tick(ctx, domain.Position{X: 320, Y: 330})
	assert.True(t, ok)
	assert.Equal(t, "m/loc", id)
}

func TestDoneDialog_MissingNextStep(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/move", step(t, f.sl, "move")))
	require.NoError(t, f.c.StartDialog(ctx, "m/move"))

	_, err := f.c.Advance(ctx, dialog.NoAnswer())
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
	assert.True(t, f.store.Has("m/move/done"), "the step is still recorded as done")
	assert.False(t, f.c.HasOnGoingDialog())
}

func TestStartDialog_EmptyDialogCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	f := setup()
	require.NoError(t, f.c.Add(ctx, "m/empty", step(t, f.sl, "empty")))

	require.NoError(t, f.c.StartDialog(ctx, "m/empty"))
	assert.False(t, f.c.HasOnGoingDialog())
	assert.True(t, f.store.Has("m/empty/done"))
	assert.Empty(t, f.c.Registrations())
}

type recordingMover struct {
	targets []string
	err     error
}

func (m *recordingMover) MoveTo(_ context.Context, id string) error {
	m.targets = append(m.targets, id)
	return m.err
}

func TestStartDialog_MoveTo(t *testing.T) {
	ctx := context.Background()
	mover := &recordingMover{err: errors.New("fade failed")}
	f := setup(coordinator.WithMover(mover))
	require.NoError(t, f.c.Add(ctx, "m/move", step(t, f.sl, "move")))

	require.NoError(t, f.c.StartDialog(ctx, "m/move"), "mover failures are not fatal")
	assert.Equal(t, []string{"square"}, mover.targets)
	assert.True(t, f.c.HasOnGoingDialog())
}

type tally struct{ keys []string }

func (t *tally) Increment(_ context.Context, key string) { t.keys = append(t.keys, key) }

func TestDoneDialog_Tally(t *testing.T) {
	ctx := context.Background()
	tl := &tally{}
	f := setup(coordinator.WithTally(tl))
	require.NoError(t, f.c.Add(ctx, "m/empty", step(t, f.sl, "empty")))
	require.NoError(t, f.c.StartDialog(ctx, "m/empty"))

	assert.Equal(t, []string{"MISSION/m/empty/done"}, tl.keys)
}

func TestHints(t *testing.T) {
	ctx := context.Background()
	f := setup()
	assert.Empty(t, f.c.Hints())

	require.NoError(t, f.c.Add(ctx, "m/npc", step(t, f.sl, "npc")))
	require.NoError(t, f.c.Add(ctx, "m/queue", step(t, f.sl, "queue")))

	hints := f.c.Hints()
	require.Len(t, hints, 2)
	assert.Equal(t, "Talk to the elder", hints[0].StepTitle)
	assert.Equal(t, "Mission", hints[0].MissionTitle)
	assert.Equal(t, "npc", hints[0].Trigger)
	assert.Equal(t, "elder", hints[0].Target)
	assert.Equal(t, "queue", hints[1].Trigger)
	assert.Empty(t, hints[1].Target)
}

func TestAdvance_WithoutDialog(t *testing.T) {
	f := setup()
	_, err := f.c.Advance(context.Background(), dialog.NoAnswer())
	assert.ErrorIs(t, err, domain.ErrNoActiveDialog)
	assert.Nil(t, f.c.Current())
}
