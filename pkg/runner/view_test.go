package runner

import (
	"testing"

	"github.com/aretw0/questline/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		item domain.DialogItem
		want View
	}{
		{
			name: "line with placeholder",
			item: &domain.Line{ItemBase: domain.ItemBase{Name: "$player"}, Line: "I am $player"},
			want: View{Kind: domain.KindLine, Speaker: "Ana", Text: "I am Ana"},
		},
		{
			name: "select",
			item: &domain.Select{
				ItemBase: domain.ItemBase{Name: "Elder"},
				Question: "Ready, $player?",
				Choices:  []domain.Choice{{Text: "Yes"}, {Text: "No, said $player"}},
			},
			want: View{Kind: domain.KindSelect, Speaker: "Elder", Text: "Ready, Ana?", Choices: []string{"Yes", "No, said Ana"}, Input: true},
		},
		{
			name: "prompt",
			item: &domain.Prompt{Question: "Name?", StoreKey: "player_name"},
			want: View{Kind: domain.KindPrompt, Text: "Name?", Input: true},
		},
		{
			name: "message",
			item: &domain.Message{Message: "Chapter 1"},
			want: View{Kind: domain.KindMessage, Text: "Chapter 1"},
		},
		{
			name: "iframe",
			item: &domain.Iframe{URL: "https://example.org", Style: "width:100%"},
			want: View{Kind: domain.KindIframe, Text: "https://example.org", URL: "https://example.org", Style: "width:100%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.item, "Ana"))
		})
	}
}

func TestRender_Nil(t *testing.T) {
	assert.Equal(t, View{}, Render(nil, "Ana"))
}
