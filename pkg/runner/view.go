package runner

import (
	"github.com/aretw0/questline/pkg/domain"
)

// View is what a frontend needs to show one dialog item.
type View struct {
	Kind    domain.ItemKind `json:"kind"`
	Speaker string          `json:"speaker,omitempty"`
	Text    string          `json:"text"`
	Choices []string        `json:"choices,omitempty"`
	URL     string          `json:"url,omitempty"`
	Style   string          `json:"style,omitempty"`
	// Input is set when the item waits for a choice or a reply.
	Input bool `json:"input"`
}

// Render turns a dialog item into a View, substituting the player placeholder.
// A nil item renders as the zero View.
func Render(item domain.DialogItem, playerName string) View {
	if item == nil {
		return View{}
	}
	r := &renderer{player: playerName}
	item.Accept(r)
	r.view.Kind = item.Kind()
	r.view.Speaker = domain.ResolvePlayer(item.Base().Name, playerName)
	return r.view
}

type renderer struct {
	player string
	view   View
}

func (r *renderer) text(s string) string {
	return domain.ResolvePlayer(s, r.player)
}

func (r *renderer) VisitLine(l *domain.Line) {
	r.view.Text = r.text(l.Line)
}

func (r *renderer) VisitSelect(s *domain.Select) {
	r.view.Text = r.text(s.Question)
	r.view.Input = true
	for _, c := range s.Choices {
		r.view.Choices = append(r.view.Choices, r.text(c.Text))
	}
}

func (r *renderer) VisitPrompt(p *domain.Prompt) {
	r.view.Text = r.text(p.Question)
	r.view.Input = true
}

func (r *renderer) VisitMessage(m *domain.Message) {
	r.view.Text = r.text(m.Message)
}

func (r *renderer) VisitIframe(f *domain.Iframe) {
	r.view.URL = f.URL
	r.view.Style = f.Style
	r.view.Text = f.URL
}
