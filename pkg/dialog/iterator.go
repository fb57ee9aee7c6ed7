package dialog

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/questline/pkg/domain"
)

// Recorder is the write side of the answer store.
type Recorder interface {
	SetAndNotify(ctx context.Context, key, value string)
}

// Tally receives remote counter increments. Implementations must not block.
type Tally interface {
	Increment(ctx context.Context, key string)
}

// Iterator is the cursor of a single dialog playthrough.
// It is created when a dialog starts and discarded when it ends.
type Iterator struct {
	step     *domain.MissionStep
	dialog   *domain.Dialog
	index    int
	nextStep string

	recorder Recorder
	tally    Tally
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures an Iterator.
type Option func(*Iterator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(it *Iterator) {
		it.logger = l
	}
}

// WithTally sets the remote counter sink for Select answers.
func WithTally(t Tally) Option {
	return func(it *Iterator) {
		it.tally = t
	}
}

// WithHooks sets the lifecycle hooks. Only OnAnswer is used.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(it *Iterator) {
		it.hooks = h
	}
}

// New positions an iterator on the first item of the step's dialog.
// recorder may be nil, in which case answers are not stored.
func New(step *domain.MissionStep, recorder Recorder, opts ...Option) *Iterator {
	d := step.Dialog
	if d == nil {
		d = domain.NewDialog(step.Ref())
	}
	it := &Iterator{
		step:     step,
		dialog:   d,
		nextStep: step.NextStep,
		recorder: recorder,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Step returns the mission step being played.
func (it *Iterator) Step() *domain.MissionStep { return it.step }

// Index returns the position of the cursor.
func (it *Iterator) Index() int { return it.index }

// NextStep returns the step that follows once the dialog is done.
// Items carrying their own nextStep override the step default as they are reached.
func (it *Iterator) NextStep() string { return it.nextStep }

// Done reports whether the cursor is past the last item.
func (it *Iterator) Done() bool { return it.dialog.At(it.index) == nil }

// Current returns the item under the cursor, or nil when the dialog is over.
// Observing an item with a nextStep override captures the override.
func (it *Iterator) Current() domain.DialogItem {
	item := it.dialog.At(it.index)
	if item == nil {
		return nil
	}
	if next := item.Base().NextStep; next != "" {
		it.nextStep = next
	}
	return item
}

// Next leaves the current item with the given answer and returns the new current item.
// Successor resolution, in increasing priority: sequential, item nextLine, choice nextLine.
// A Select choice falling through sequentially skips the items its sibling choices jump to.
func (it *Iterator) Next(ctx context.Context, answer Answer) domain.DialogItem {
	item := it.Current()
	if item == nil {
		return nil
	}

	t := &transition{it: it, ctx: ctx, answer: answer, next: it.index + 1}
	if target := item.Base().NextLine; target != "" {
		t.next = it.resolve(target)
	}
	item.Accept(t)

	it.logger.Debug("dialog advanced", "dialog", it.step.Ref().DialogID(), "from", it.index, "to", t.next)
	it.index = t.next
	return it.Current()
}

// resolve maps a jump target to an index. Unknown targets end the dialog.
func (it *Iterator) resolve(target string) int {
	if target == domain.EndOfDialog {
		return it.dialog.Len()
	}
	i, ok := it.dialog.IndexOf(target)
	if !ok {
		it.logger.Warn("unknown jump target, ending dialog", "dialog", it.step.Ref().DialogID(), "target", target)
		return it.dialog.Len()
	}
	return i
}

// skipBranches moves a sequential fallthrough past the items that sibling choices
// of s jump to, so a choice without nextLine lands after the branch bodies.
func (it *Iterator) skipBranches(s *domain.Select, next int) int {
	targets := make(map[int]bool, len(s.Choices))
	for _, c := range s.Choices {
		if c.NextLine == "" || c.NextLine == domain.EndOfDialog {
			continue
		}
		if i, ok := it.dialog.IndexOf(c.NextLine); ok {
			targets[i] = true
		}
	}
	for targets[next] {
		next++
	}
	return next
}

func (it *Iterator) record(ctx context.Context, key, value string, kind domain.ItemKind) {
	if it.recorder != nil {
		it.recorder.SetAndNotify(ctx, key, value)
	}
	if it.hooks.OnAnswer != nil {
		it.hooks.OnAnswer(ctx, &domain.AnswerEvent{
			EventBase: domain.NewEventBase(domain.EventAnswer),
			DialogID:  it.step.Ref().DialogID(),
			StoreKey:  key,
			Value:     value,
			Kind:      kind,
		})
	}
}

// transition applies the side effects of leaving an item.
type transition struct {
	it     *Iterator
	ctx    context.Context
	answer Answer
	next   int
}

func (t *transition) VisitLine(*domain.Line)       {}
func (t *transition) VisitMessage(*domain.Message) {}
func (t *transition) VisitIframe(*domain.Iframe)   {}

func (t *transition) VisitSelect(s *domain.Select) {
	if len(s.Choices) == 0 {
		return
	}
	idx, ok := t.answer.Choice()
	if !ok || idx >= len(s.Choices) {
		t.it.logger.Warn("select without a valid answer, defaulting to the first choice",
			"dialog", t.it.step.Ref().DialogID(), "answer", t.answer.Text())
		idx = 0
	}

	choice := s.Choices[idx]
	switch {
	case choice.NextLine != "":
		t.next = t.it.resolve(choice.NextLine)
	case s.NextLine == "":
		t.next = t.it.skipBranches(s, t.next)
	}
	if s.StoreKey == "" {
		return
	}
	t.it.record(t.ctx, s.StoreKey, choice.StoredValue(idx), s.Kind())
	if t.it.tally != nil {
		t.it.tally.Increment(t.ctx, domain.ResponseCounterKey(s.StoreKey))
	}
}

func (t *transition) VisitPrompt(p *domain.Prompt) {
	if p.StoreKey == "" {
		return
	}
	if !t.answer.IsSet() {
		t.it.logger.Warn("prompt left without an answer, nothing stored",
			"dialog", t.it.step.Ref().DialogID(), "store_key", p.StoreKey)
		return
	}
	t.it.record(t.ctx, p.StoreKey, t.answer.Text(), p.Kind())
}
