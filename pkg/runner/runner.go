package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/session"
)

// Handler is a Presenter that also reads host commands.
type Handler interface {
	Presenter
	ReadCommand(ctx context.Context) (string, error)
}

// Runner is the text adventure host: it reads commands, moves the player,
// and ticks the coordinator once per command.
type Runner struct {
	Handler Handler
	Logger  *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// NewRunner creates a Runner over the given handler.
func NewRunner(h Handler, opts ...Option) *Runner {
	r := &Runner{
		Handler: h,
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const helpText = `Commands:
  look        describe the surroundings
  go <id>     walk to a character or a location
  talk        talk to whoever is next to you
  hints       list the open missions
  answers     list what you answered so far
  quit        leave the game`

// Run loops until quit, end of input or ctx cancellation.
func (r *Runner) Run(ctx context.Context, g *session.Game) error {
	if err := r.Handler.Notice(ctx, "Type 'help' for commands."); err != nil {
		return err
	}

	for {
		if err := r.tick(ctx, g); err != nil {
			return endOfInput(err)
		}

		line, err := r.Handler.ReadCommand(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		r.Logger.Debug("command", "name", fields[0], "args", fields[1:])

		var msg string
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil
		case "help":
			msg = helpText
		case "look":
			msg = r.look(g)
		case "go":
			msg = r.walk(ctx, g, fields[1:])
		case "talk":
			msg, err = r.talk(ctx, g)
		case "hints":
			msg = r.hints(g)
		case "answers":
			msg = r.answers(g)
		default:
			msg = fmt.Sprintf("Unknown command %q. Type 'help' for commands.", fields[0])
		}
		if err != nil {
			return endOfInput(err)
		}
		if msg != "" {
			if err := r.Handler.Notice(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// tick starts whatever the coordinator selects for the player position and plays it.
func (r *Runner) tick(ctx context.Context, g *session.Game) error {
	if _, ok := g.Tick(ctx); !ok {
		return nil
	}
	return r.play(ctx, g)
}

func (r *Runner) play(ctx context.Context, g *session.Game) error {
	err := Play(ctx, g, r.Handler)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStepNotFound) {
		r.Logger.Warn("dialog ended without a next step", "error", err)
		return nil
	}
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		return io.EOF
	}
	return err
}

func (r *Runner) talk(ctx context.Context, g *session.Game) (string, error) {
	id, err := g.Interact(ctx)
	if err != nil {
		return err.Error(), nil
	}
	if id == "" {
		return "There is nobody to talk to here.", nil
	}
	if err := r.play(ctx, g); err != nil {
		return "", err
	}
	return "", nil
}

func (r *Runner) walk(ctx context.Context, g *session.Game, args []string) string {
	if len(args) == 0 {
		return "Go where?"
	}
	if err := g.GoTo(ctx, args[0]); err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return fmt.Sprintf("There is no %q around.", args[0])
		}
		return err.Error()
	}
	return fmt.Sprintf("You walk to %s.", args[0])
}

func (r *Runner) look(g *session.Game) string {
	var b strings.Builder
	pos := g.World.Player()
	fmt.Fprintf(&b, "You are at (%.0f, %.0f).", pos.X, pos.Y)

	if chars := g.World.Characters(); len(chars) > 0 {
		b.WriteString("\nPeople:")
		for _, c := range chars {
			mark := ""
			if c.HasMissionMark() {
				mark = " (!)"
			}
			fmt.Fprintf(&b, "\n  %s [%s]%s, %.0f tiles away", c.Name(), c.ID(), mark, pos.Distance(c.Position())/domain.TileSize)
		}
	}
	if ids := g.World.LocationIDs(); len(ids) > 0 {
		b.WriteString("\nPlaces:")
		for _, id := range ids {
			loc, _ := g.World.Location(id)
			fmt.Fprintf(&b, "\n  %s, %.0f tiles away", id, pos.Distance(loc)/domain.TileSize)
		}
	}
	return b.String()
}

func (r *Runner) hints(g *session.Game) string {
	hints := g.Coordinator.Hints()
	if len(hints) == 0 {
		return "No missions."
	}
	var b strings.Builder
	for i, h := range hints {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", h.MissionTitle, h.StepTitle)
		if h.Target != "" {
			fmt.Fprintf(&b, " (%s %s)", h.Trigger, h.Target)
		}
		if h.Description != "" {
			fmt.Fprintf(&b, "\n  %s", h.Description)
		}
	}
	return b.String()
}

func (r *Runner) answers(g *session.Game) string {
	snapshot := g.Answers.Snapshot()
	if len(snapshot) == 0 {
		return "You have not answered anything yet."
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s = %s", k, snapshot[k])
	}
	return b.String()
}
