package domain

import "strconv"

// ItemKind is the document-level discriminator of a dialog item.
type ItemKind string

const (
	// KindLine is a spoken line acknowledged by the player.
	KindLine ItemKind = "line"
	// KindSelect asks a multiple-choice question.
	KindSelect ItemKind = "input.select"
	// KindPrompt asks a free-text question.
	KindPrompt ItemKind = "input.text"
	// KindMessage is a narrator message without a speaker turn.
	KindMessage ItemKind = "message"
	// KindIframe embeds external content.
	KindIframe ItemKind = "iframe"
)

// ItemBase holds the fields shared by every dialog item variant.
type ItemBase struct {
	// Name is who is talking. It may contain PlayerPlaceholder.
	Name string `json:"name"`
	// ID is the optional jump target identifier.
	ID string `json:"id,omitempty"`
	// NextLine overrides the sequential successor. EndOfDialog ends the dialog.
	NextLine string `json:"nextLine,omitempty"`
	// NextStep overrides the mission step that follows once this item is reached.
	NextStep string `json:"nextStep,omitempty"`
}

// Base returns the shared fields.
func (b *ItemBase) Base() *ItemBase { return b }

func (b *ItemBase) sealed() {}

// DialogItem is a closed sum type over Line, Select, Prompt, Message and Iframe.
// Code that needs to handle every variant implements ItemVisitor.
type DialogItem interface {
	Kind() ItemKind
	Base() *ItemBase
	// Text is the primary content of the item (line, question, message or url).
	Text() string
	Accept(v ItemVisitor)
	sealed()
}

// ItemVisitor is implemented by anything that processes dialog items.
// Adding a variant adds a method here, which breaks every visitor until it handles it.
type ItemVisitor interface {
	VisitLine(*Line)
	VisitSelect(*Select)
	VisitPrompt(*Prompt)
	VisitMessage(*Message)
	VisitIframe(*Iframe)
}

// Line is a single spoken line.
type Line struct {
	ItemBase
	Line string `json:"line"`
}

// Kind returns KindLine.
func (l *Line) Kind() ItemKind { return KindLine }

// Text returns the spoken line.
func (l *Line) Text() string { return l.Line }

// Accept calls v.VisitLine.
func (l *Line) Accept(v ItemVisitor) { v.VisitLine(l) }

// Choice is one option of a Select item.
type Choice struct {
	Text     string  `json:"text"`
	NextLine string  `json:"nextLine,omitempty"`
	Value    *string `json:"value,omitempty"`
}

// StoredValue is what gets written to the answer store when this choice is picked:
// the explicit value, or the choice index.
func (c Choice) StoredValue(index int) string {
	if c.Value != nil {
		return *c.Value
	}
	return strconv.Itoa(index)
}

// Select is a multiple-choice question.
type Select struct {
	ItemBase
	Question string   `json:"question"`
	Choices  []Choice `json:"choices"`
	StoreKey string   `json:"storeKey,omitempty"`
}

// Kind returns KindSelect.
func (s *Select) Kind() ItemKind { return KindSelect }

// Text returns the question.
func (s *Select) Text() string { return s.Question }

// Accept calls v.VisitSelect.
func (s *Select) Accept(v ItemVisitor) { v.VisitSelect(s) }

// Prompt is a free-text question.
type Prompt struct {
	ItemBase
	Question string `json:"question"`
	StoreKey string `json:"storeKey,omitempty"`
}

// Kind returns KindPrompt.
func (p *Prompt) Kind() ItemKind { return KindPrompt }

// Text returns the question.
func (p *Prompt) Text() string { return p.Question }

// Accept calls v.VisitPrompt.
func (p *Prompt) Accept(v ItemVisitor) { v.VisitPrompt(p) }

// Message is an informational message that only needs acknowledgement.
type Message struct {
	ItemBase
	Message string `json:"message"`
}

// Kind returns KindMessage.
func (m *Message) Kind() ItemKind { return KindMessage }

// Text returns the message.
func (m *Message) Text() string { return m.Message }

// Accept calls v.VisitMessage.
func (m *Message) Accept(v ItemVisitor) { v.VisitMessage(m) }

// Iframe embeds external content hosted at URL.
type Iframe struct {
	ItemBase
	URL      string `json:"url"`
	Style    string `json:"style,omitempty"`
	Callback string `json:"callback,omitempty"`
}

// Kind returns KindIframe.
func (f *Iframe) Kind() ItemKind { return KindIframe }

// Text returns the embedded URL.
func (f *Iframe) Text() string { return f.URL }

// Accept calls v.VisitIframe.
func (f *Iframe) Accept(v ItemVisitor) { v.VisitIframe(f) }
