package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/questline/internal/presentation/graph"
	"github.com/aretw0/questline/pkg/storyline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const village = `
missions:
  intro:
    title: Welcome
    steps:
      step-1:
        npcId: elder
        nextStep: step-2
        dialog:
          - {line: "Follow me", nextStep: step-3}
      step-2:
        locationId: well
        dialog:
          - {type: message, message: "The well is dry."}
      step-3:
        dialog:
          - {line: "Shortcut"}
  followup:
    title: "The \"Sequel\""
    depend: [intro/step-2/done, color]
    firstStep: start
    steps:
      start:
        dialog:
          - {line: "Again?"}
`

type answers map[string]string

func (a answers) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

func TestGenerateMermaid(t *testing.T) {
	sl, err := storyline.ParseYAML([]byte(village))
	require.NoError(t, err)

	out := graph.GenerateMermaid(sl, nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Subgraph Per Mission",
			contains: []string{
				"subgraph intro[\"Welcome\"]",
				"subgraph followup[\"The 'Sequel'\"]",
			},
		},
		{
			name: "Step Shapes",
			contains: []string{
				"intro__step_1((\"step-1 <br/> npc: elder\"))",
				"intro__step_2[/\"step-2 <br/> location: well\"/]",
				"intro__step_3{{\"step-3\"}}",
				"followup__start((\"start\"))",
			},
		},
		{
			name: "Step Edges",
			contains: []string{
				"intro__step_1 --> intro__step_2",
				"intro__step_1 -.-> intro__step_3",
			},
		},
		{
			name: "Dependency Edges",
			contains: []string{
				"intro__step_2 ==> followup__start",
				"key_color>\"color\"] ==> followup__start",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	sl, err := storyline.ParseYAML([]byte(village))
	require.NoError(t, err)

	out := graph.GenerateMermaid(sl, &graph.GraphOverlay{
		Answers: answers{"intro/step-1/done": "true"},
		Active:  "intro/step-2",
	})

	assert.Contains(t, out, "classDef done")
	assert.Contains(t, out, "class intro__step_1 done;")
	assert.Contains(t, out, "class intro__step_2 active;")
	assert.NotContains(t, out, "class intro__step_2 done;")
}
