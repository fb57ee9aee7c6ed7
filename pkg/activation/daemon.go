package activation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/domain"
)

// Registrar receives the steps the daemon activates. The coordinator implements it.
type Registrar interface {
	Add(ctx context.Context, id string, step *domain.MissionStep) error
}

// Store is what the daemon needs from the answer store.
type Store interface {
	domain.AnswerView
	Has(key string) bool
	Listen(key string, fn answers.Listener) (cancel func())
}

// Daemon registers the first step of every mission as soon as its dependencies are met.
type Daemon struct {
	registrar Registrar
	store     Store
	storyline *domain.Storyline
	pending   []string
	cancel    func()
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures the Daemon.
type Option func(*Daemon)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = l
	}
}

// WithHooks sets the lifecycle hooks. Only OnMissionActivated is used.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(d *Daemon) {
		d.hooks = h
	}
}

// New creates a daemon. Nothing happens until Init.
func New(registrar Registrar, store Store, opts ...Option) *Daemon {
	d := &Daemon{
		registrar: registrar,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init activates every ready mission in lexical id order, defers the others and subscribes
// to answer changes. Calling Init again replaces the storyline but keeps one subscription.
// Activation failures are logged and returned joined; they never stop other missions.
func (d *Daemon) Init(ctx context.Context, sl *domain.Storyline) error {
	d.storyline = sl
	d.pending = nil

	var errs []error
	for _, id := range sl.MissionIDs() {
		m := sl.Missions[id]
		if !m.IsReady(d.store) {
			d.pending = append(d.pending, id)
			d.logger.DebugContext(ctx, "mission pending", "mission", id, "depend", len(m.Depend))
			continue
		}
		if err := d.activate(ctx, m, false); err != nil {
			errs = append(errs, err)
		}
	}

	if d.cancel == nil {
		d.cancel = d.store.Listen(domain.Wildcard, d.onChange)
	}
	return errors.Join(errs...)
}

// Pending returns the missions still waiting on their dependencies, in activation order.
func (d *Daemon) Pending() []string {
	return append([]string(nil), d.pending...)
}

// Close drops the answer subscription.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Daemon) onChange(ctx context.Context, key, _ string) {
	if len(d.pending) == 0 {
		return
	}

	var ready []*domain.Mission
	still := d.pending[:0:0]
	for _, id := range d.pending {
		m, ok := d.storyline.Mission(id)
		if !ok {
			continue
		}
		if m.IsReady(d.store) {
			ready = append(ready, m)
			continue
		}
		still = append(still, id)
	}
	d.pending = still

	for _, m := range ready {
		d.logger.DebugContext(ctx, "mission unlocked", "mission", m.ID, "key", key)
		_ = d.activate(ctx, m, true)
	}
}

// activate registers the first step of m that is not done yet, following the recorded
// next keys and otherwise the default step chain. A fresh store always yields the first step.
func (d *Daemon) activate(ctx context.Context, m *domain.Mission, deferred bool) error {
	step, ok := m.Step(m.FirstStep)
	if !ok {
		d.logger.ErrorContext(ctx, "first step not found", "mission", m.ID, "first_step", m.FirstStep)
		return fmt.Errorf("%w: %s/%s", domain.ErrStepNotFound, m.ID, m.FirstStep)
	}

	visited := map[string]bool{}
	for d.store.Has(step.Ref().DoneKey()) {
		visited[step.ID] = true
		nextID := step.NextStep
		if routed, ok := d.store.Get(step.Ref().NextKey()); ok {
			nextID = routed
		}
		next, ok := m.Step(nextID)
		if !ok || visited[next.ID] {
			d.logger.DebugContext(ctx, "mission already completed", "mission", m.ID)
			return nil
		}
		step = next
	}

	ref := step.Ref()
	if err := d.registrar.Add(ctx, ref.DialogID(), step); err != nil {
		return fmt.Errorf("failed to activate mission %s: %w", m.ID, err)
	}

	d.logger.InfoContext(ctx, "mission activated", "mission", m.ID, "step", step.ID, "deferred", deferred)
	if d.hooks.OnMissionActivated != nil {
		d.hooks.OnMissionActivated(ctx, &domain.MissionEvent{
			EventBase: domain.NewEventBase(domain.EventMissionActivated),
			Mission:   m.ID,
			FirstStep: step.ID,
			Deferred:  deferred,
		})
	}
	return nil
}
