package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/activation"
	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/coordinator"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
	"github.com/aretw0/questline/pkg/telemetry"
)

// Game is the explicit context of one playthrough. It owns the answer store, the coordinator,
// the activation daemon and the world, and is torn down with Close.
// A Game is single-threaded: concurrent callers go through Manager.Do.
type Game struct {
	ID          string
	Storyline   *domain.Storyline
	Answers     *answers.Store
	Coordinator *coordinator.Coordinator
	Daemon      *activation.Daemon
	World       *memory.World

	logger *slog.Logger
}

type gameConfig struct {
	world     *memory.WorldDef
	backend   ports.AnswerBackend
	namespace string
	telemetry *telemetry.Recorder
	hooks     domain.LifecycleHooks
	radius    float64
	logger    *slog.Logger
}

// GameOption configures NewGame.
type GameOption func(*gameConfig)

// WithWorld sets the map. Without it the world is laid out from the storyline.
func WithWorld(def *memory.WorldDef) GameOption {
	return func(c *gameConfig) {
		c.world = def
	}
}

// WithAnswerBackend makes the answers durable.
func WithAnswerBackend(b ports.AnswerBackend) GameOption {
	return func(c *gameConfig) {
		c.backend = b
	}
}

// WithNamespace sets the backend namespace of the answers.
func WithNamespace(ns string) GameOption {
	return func(c *gameConfig) {
		c.namespace = ns
	}
}

// WithTelemetry sets the remote counter recorder. It is shared, so Game.Close leaves it open.
func WithTelemetry(r *telemetry.Recorder) GameOption {
	return func(c *gameConfig) {
		c.telemetry = r
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) GameOption {
	return func(c *gameConfig) {
		c.hooks = h
	}
}

// WithRadius sets the proximity threshold.
func WithRadius(r float64) GameOption {
	return func(c *gameConfig) {
		c.radius = r
	}
}

// WithGameLogger sets the logger.
func WithGameLogger(l *slog.Logger) GameOption {
	return func(c *gameConfig) {
		c.logger = l
	}
}

// NewGame wires a playthrough of sl, hydrates its answers and activates the ready missions.
// Missions that fail to activate are logged; only a failing answer backend is an error.
func NewGame(ctx context.Context, id string, sl *domain.Storyline, opts ...GameOption) (*Game, error) {
	cfg := &gameConfig{
		namespace: answers.DefaultNamespace,
		radius:    2 * domain.TileSize,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.world == nil {
		cfg.world = memory.WorldFromStoryline(sl)
	}
	logger := cfg.logger.With("session_id", id)

	world := cfg.world.Instantiate()
	store := answers.New(
		answers.WithBackend(cfg.backend),
		answers.WithNamespace(cfg.namespace),
		answers.WithLogger(logger),
	)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to start game %s: %w", id, err)
	}

	coordOpts := []coordinator.Option{
		coordinator.WithMover(world),
		coordinator.WithHooks(cfg.hooks),
		coordinator.WithRadius(cfg.radius),
		coordinator.WithLogger(logger),
	}
	if cfg.telemetry != nil {
		coordOpts = append(coordOpts, coordinator.WithTally(cfg.telemetry))
	}
	coord := coordinator.New(sl, world, store, coordOpts...)
	daemon := activation.New(coord, store,
		activation.WithHooks(cfg.hooks),
		activation.WithLogger(logger),
	)
	if err := daemon.Init(ctx, sl); err != nil {
		logger.Warn("some missions could not be activated", "error", err)
	}

	return &Game{
		ID:          id,
		Storyline:   sl,
		Answers:     store,
		Coordinator: coord,
		Daemon:      daemon,
		World:       world,
		logger:      logger,
	}, nil
}

// PlayerName resolves the player placeholder from the player_name answer.
func (g *Game) PlayerName() string {
	if name, ok := g.Answers.Get(domain.PlayerNameKey); ok && name != "" {
		return name
	}
	return domain.DefaultPlayerName
}

// Tick runs one simulation step at the player position and returns the dialog it started, if any.
func (g *Game) Tick(ctx context.Context) (string, bool) {
	return g.Coordinator.Tick(ctx, g.World.Player())
}

// Interact starts the NPC dialog next to the player, if any.
func (g *Game) Interact(ctx context.Context) (string, error) {
	return g.Coordinator.Interact(ctx, g.World.Player())
}

// GoTo walks the player onto a character or a location. Walking is refused during a dialog.
func (g *Game) GoTo(ctx context.Context, id string) error {
	if g.Coordinator.HasOnGoingDialog() {
		return domain.ErrDialogInProgress
	}
	return g.World.MoveTo(ctx, id)
}

// Close ends the playthrough.
func (g *Game) Close() error {
	g.Daemon.Close()
	g.logger.Debug("game closed")
	return nil
}
