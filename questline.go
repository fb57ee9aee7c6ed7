package questline

import (
	"context"
	"log/slog"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/internal/presentation/graph"
	"github.com/aretw0/questline/internal/validator"
	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
	"github.com/aretw0/questline/pkg/session"
	"github.com/aretw0/questline/pkg/storyline"
)

// Engine is the high-level entry point of the library.
// It holds a parsed storyline and the world it plays on, and starts games from them.
type Engine struct {
	Storyline *domain.Storyline
	World     *memory.WorldDef

	parseOpts []storyline.Option
	gameOpts  []session.GameOption
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithWorld sets the map every game is instantiated from.
// Without it the world is laid out from the storyline's NPC and location ids.
func WithWorld(def *memory.WorldDef) Option {
	return func(e *Engine) {
		e.World = def
	}
}

// WithLogger sets the logger for parsing and for every game.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGameOptions appends options applied to every game started by the engine.
func WithGameOptions(opts ...session.GameOption) Option {
	return func(e *Engine) {
		e.gameOpts = append(e.gameOpts, opts...)
	}
}

// WithStrictTargets rejects steps without an npcId or locationId when loading.
func WithStrictTargets() Option {
	return func(e *Engine) {
		e.parseOpts = append(e.parseOpts, storyline.RequireTarget())
	}
}

func newEngine(opts []Option) *Engine {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New loads the storyline at path (JSON, or YAML by extension).
func New(path string, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	sl, err := storyline.Load(path, append([]storyline.Option{storyline.WithLogger(e.logger)}, e.parseOpts...)...)
	if err != nil {
		return nil, err
	}
	e.Storyline = sl
	return e, nil
}

// NewFromStoryline wraps an already parsed storyline.
func NewFromStoryline(sl *domain.Storyline, opts ...Option) *Engine {
	e := newEngine(opts)
	e.Storyline = sl
	return e
}

// NewGame starts a playthrough. Per-call options are applied after the engine's.
func (e *Engine) NewGame(ctx context.Context, id string, opts ...session.GameOption) (*session.Game, error) {
	all := []session.GameOption{session.WithGameLogger(e.logger)}
	if e.World != nil {
		all = append(all, session.WithWorld(e.World))
	}
	all = append(all, e.gameOpts...)
	all = append(all, opts...)
	return session.NewGame(ctx, id, e.Storyline, all...)
}

// Factory adapts the engine to a session manager. extra builds per-session options, and may be nil.
func (e *Engine) Factory(extra func(id string) []session.GameOption) session.Factory {
	return func(ctx context.Context, id string) (*session.Game, error) {
		var opts []session.GameOption
		if extra != nil {
			opts = extra(id)
		}
		return e.NewGame(ctx, id, opts...)
	}
}

// Validate lints the storyline. Targets are only checked against an explicit world.
func (e *Engine) Validate() validator.Report {
	var world ports.World
	if e.World != nil {
		world = e.World.Instantiate()
	}
	return validator.Validate(e.Storyline, world)
}

// Graph renders the storyline as a Mermaid flowchart. With a game the
// completed steps and the running dialog are highlighted.
func (e *Engine) Graph(g *session.Game) string {
	if g == nil {
		return graph.GenerateMermaid(e.Storyline, nil)
	}
	overlay := &graph.GraphOverlay{Answers: g.Answers}
	if it := g.Coordinator.Active(); it != nil {
		overlay.Active = it.Step().Ref().DialogID()
	}
	return graph.GenerateMermaid(e.Storyline, overlay)
}
