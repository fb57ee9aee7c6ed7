package storyline

import (
	"fmt"

	"github.com/aretw0/questline/internal/dto"
	"github.com/aretw0/questline/pkg/domain"
)

func (p *parser) item(path string, raw any) domain.DialogItem {
	var doc dto.ItemDoc
	if err := decode(raw, &doc); err != nil {
		p.warn(path, "malformed dialog item replaced by a placeholder line: %v", err)
		return &domain.Line{ItemBase: domain.ItemBase{Name: domain.DefaultSpeaker}, Line: domain.DefaultText}
	}

	base := domain.ItemBase{
		Name:     doc.Name,
		ID:       doc.ID,
		NextLine: doc.NextLine,
		NextStep: doc.NextStep,
	}
	if base.Name == "" {
		base.Name = domain.DefaultSpeaker
	}

	kind := domain.ItemKind(doc.Type)
	if doc.Type == "" {
		// Untyped items with a question are the legacy multiple-choice form.
		kind = domain.KindLine
		if doc.Question != nil && doc.Line == nil {
			kind = domain.KindSelect
		}
	}

	switch kind {
	case domain.KindLine:
		if doc.Line != nil && doc.Question != nil {
			p.warn(path, "line and question are mutually exclusive, question ignored")
		}
		return p.line(path, base, doc)
	case domain.KindSelect:
		return &domain.Select{
			ItemBase: base,
			Question: p.text(path+".question", doc.Question),
			Choices:  p.choices(path+".choices", doc.Choices),
			StoreKey: doc.StoreKey,
		}
	case domain.KindPrompt:
		return &domain.Prompt{
			ItemBase: base,
			Question: p.text(path+".question", doc.Question),
			StoreKey: doc.StoreKey,
		}
	case domain.KindMessage:
		text := doc.Message
		if text == nil {
			text = doc.Line
		}
		return &domain.Message{ItemBase: base, Message: p.text(path+".message", text)}
	case domain.KindIframe:
		if doc.URL == "" {
			p.warn(path+".url", "iframe without url replaced by a line")
			return p.line(path, base, doc)
		}
		return &domain.Iframe{ItemBase: base, URL: doc.URL, Style: doc.Style, Callback: doc.Callback}
	default:
		p.warn(path+".type", "unknown item type %q, falling back to line", doc.Type)
		if doc.Line == nil {
			if doc.Message != nil {
				doc.Line = doc.Message
			} else {
				doc.Line = doc.Question
			}
		}
		return p.line(path, base, doc)
	}
}

func (p *parser) line(path string, base domain.ItemBase, doc dto.ItemDoc) *domain.Line {
	return &domain.Line{ItemBase: base, Line: p.text(path+".line", doc.Line)}
}

// text substitutes DefaultText for missing or empty required text.
func (p *parser) text(path string, s *string) string {
	if s == nil || *s == "" {
		p.warn(path, "missing text, using %q", domain.DefaultText)
		return domain.DefaultText
	}
	return *s
}

func (p *parser) choices(path string, raw []any) []domain.Choice {
	var choices []domain.Choice
	for i, entry := range raw {
		entryPath := fmt.Sprintf("%s[%d]", path, i)

		var doc dto.ChoiceDoc
		if s, ok := entry.(string); ok {
			doc.Text = s
		} else if err := decode(entry, &doc); err != nil {
			p.warn(entryPath, "malformed choice dropped: %v", err)
			continue
		}
		if doc.Text == "" {
			p.warn(entryPath, "choice has no text, using %q", domain.DefaultText)
			doc.Text = domain.DefaultText
		}
		choices = append(choices, domain.Choice{Text: doc.Text, NextLine: doc.NextLine, Value: doc.Value})
	}

	if len(choices) == 0 {
		p.warn(path, "question has no choices, using a single %q", domain.DefaultChoiceText)
		choices = []domain.Choice{{Text: domain.DefaultChoiceText}}
	}
	return choices
}
