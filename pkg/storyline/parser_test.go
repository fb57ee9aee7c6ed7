package storyline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/storyline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatedStoryline = `{
  "missions": {
    "intro": {
      "title": "Welcome",
      "description": "Meet the elder",
      "steps": {
        "step-1": {
          "npcId": "elder",
          "nextStep": "step-2",
          "dialog": [
            {"name": "Elder", "line": "Hello, $player"},
            {"type": "input.text", "question": "What is your name?", "storeKey": "player_name"}
          ]
        },
        "step-2": {
          "locationId": "well",
          "moveTo": "square",
          "dialog": [{"type": "message", "message": "The well is dry."}]
        }
      }
    },
    "followup": {
      "depend": ["intro/step-1/done", {"storeKey": "color", "value": "red"}],
      "firstStep": "start",
      "steps": {
        "start": {
          "dialog": [{"type": "iframe", "url": "https://example.org", "style": "width:100%"}]
        }
      }
    }
  }
}`

func TestParse_Storyline(t *testing.T) {
	sl, err := storyline.Parse([]byte(gatedStoryline))
	require.NoError(t, err)

	assert.Equal(t, []string{"followup", "intro"}, sl.MissionIDs())

	intro, ok := sl.Mission("intro")
	require.True(t, ok)
	assert.Equal(t, "Welcome", intro.Title)
	assert.Equal(t, domain.DefaultFirstStep, intro.FirstStep)
	assert.Empty(t, intro.Depend)

	step1, ok := intro.Step("step-1")
	require.True(t, ok)
	assert.Equal(t, "intro", step1.MissionID)
	assert.Equal(t, "elder", step1.NPCID)
	assert.Equal(t, "step-2", step1.NextStep)
	assert.Equal(t, domain.DefaultStepTitle, step1.Title)
	assert.Equal(t, domain.StepRef{MissionID: "intro", StepID: "step-1"}, step1.Dialog.Step)
	require.Equal(t, 2, step1.Dialog.Len())

	prompt, ok := step1.Dialog.At(1).(*domain.Prompt)
	require.True(t, ok)
	assert.Equal(t, "player_name", prompt.StoreKey)
	assert.Equal(t, domain.DefaultSpeaker, prompt.Name)

	step2, _ := intro.Step("step-2")
	assert.Equal(t, domain.TriggerLocation, step2.TriggerMode())
	assert.Equal(t, "square", step2.MoveTo)
	assert.IsType(t, &domain.Message{}, step2.Dialog.At(0))

	followup, _ := sl.Mission("followup")
	assert.Equal(t, "start", followup.FirstStep)
	assert.Equal(t, domain.DefaultMissionTitle, followup.Title)
	assert.Equal(t, domain.DefaultMissionDescription, followup.Description)
	assert.Equal(t, []domain.Dependency{
		domain.Requires("intro/step-1/done"),
		domain.RequiresValue("color", "red"),
	}, followup.Depend)

	start, _ := followup.Step("start")
	assert.Equal(t, domain.TriggerQueue, start.TriggerMode())
	iframe, ok := start.Dialog.At(0).(*domain.Iframe)
	require.True(t, ok)
	assert.Equal(t, "https://example.org", iframe.URL)
	assert.Equal(t, "width:100%", iframe.Style)

	assert.Empty(t, sl.Diagnostics)
}

func TestParse_SelectBranching(t *testing.T) {
	doc := `{"missions": {"m": {"steps": {"step-1": {"dialog": [
		{"id": "q1", "type": "input.select", "question": "Pick", "choices": [{"text": "A", "nextLine": "lineA"}, {"text": "B", "value": 7}]},
		{"id": "lineA", "type": "line", "line": "Got A"},
		{"type": "line", "line": "Got B (fallthrough)"}
	]}}}}}`

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)

	step, _ := sl.Step(domain.StepRef{MissionID: "m", StepID: "step-1"})
	sel, ok := step.Dialog.At(0).(*domain.Select)
	require.True(t, ok)
	require.Len(t, sel.Choices, 2)
	assert.Equal(t, "lineA", sel.Choices[0].NextLine)
	assert.Nil(t, sel.Choices[0].Value)
	require.NotNil(t, sel.Choices[1].Value)
	assert.Equal(t, "7", *sel.Choices[1].Value)

	idx, ok := step.Dialog.IndexOf("lineA")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestParse_Defaults(t *testing.T) {
	doc := `{"missions": {"m": {"steps": {"step-1": {"dialog": [
		{},
		{"type": "input.select", "question": "Continue?"},
		{"type": "input.text"},
		{"type": "teleport", "line": "Whoosh"},
		{"type": "iframe"},
		{"question": "Legacy?", "choices": [{"text": "Yes"}]},
		"not an object"
	]}}}}}`

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)
	step, _ := sl.Step(domain.StepRef{MissionID: "m", StepID: "step-1"})
	items := step.Dialog.Items
	require.Len(t, items, 7)

	line := items[0].(*domain.Line)
	assert.Equal(t, domain.DefaultSpeaker, line.Name)
	assert.Equal(t, domain.DefaultText, line.Line)

	sel := items[1].(*domain.Select)
	assert.Equal(t, []domain.Choice{{Text: domain.DefaultChoiceText}}, sel.Choices)

	assert.Equal(t, domain.DefaultText, items[2].(*domain.Prompt).Question)
	assert.Equal(t, "Whoosh", items[3].(*domain.Line).Line)
	assert.Equal(t, domain.KindLine, items[4].Kind())
	assert.Equal(t, domain.KindSelect, items[5].Kind())
	assert.Equal(t, domain.DefaultText, items[6].Text())

	assert.NotEmpty(t, sl.Diagnostics)
}

func TestParse_DanglingNextLine(t *testing.T) {
	doc := `{"missions": {"m": {"steps": {"step-1": {"dialog": [
		{"line": "one", "nextLine": "nowhere"},
		{"type": "input.select", "question": "?", "choices": [{"text": "x", "nextLine": "gone"}, {"text": "y", "nextLine": "$EOD"}]}
	]}}}}}`

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)
	step, _ := sl.Step(domain.StepRef{MissionID: "m", StepID: "step-1"})

	assert.Equal(t, domain.EndOfDialog, step.Dialog.At(0).Base().NextLine)
	sel := step.Dialog.At(1).(*domain.Select)
	assert.Equal(t, domain.EndOfDialog, sel.Choices[0].NextLine)
	assert.Equal(t, domain.EndOfDialog, sel.Choices[1].NextLine)
	assert.Len(t, sl.Diagnostics, 2)
}

func TestParse_MalformedDependenciesDropped(t *testing.T) {
	doc := `{"missions": {"m": {"depend": ["ok", 42, {"value": "x"}, {"storeKey": "k"}], "steps": {"step-1": {"dialog": [{"line": "hi"}]}}}}}`

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)
	m, _ := sl.Mission("m")
	assert.Equal(t, []domain.Dependency{domain.Requires("ok"), domain.Requires("k")}, m.Depend)
	assert.Len(t, sl.Diagnostics, 2)
}

func TestParse_MissingFirstStepIsDiagnosed(t *testing.T) {
	doc := `{"missions": {"m": {"firstStep": "ghost", "steps": {"step-1": {"nextStep": "nope", "dialog": [{"line": "hi"}]}}}}}`

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)
	m, _ := sl.Mission("m")
	assert.Equal(t, "ghost", m.FirstStep)

	paths := make([]string, 0, len(sl.Diagnostics))
	for _, d := range sl.Diagnostics {
		paths = append(paths, d.Path)
	}
	assert.Contains(t, paths, "missions.m.firstStep")
	assert.Contains(t, paths, "missions.m.steps.step-1.nextStep")
}

func TestParse_RequireTarget(t *testing.T) {
	doc := `{"missions": {"m": {"steps": {"step-1": {"dialog": [{"line": "hi"}]}}}}}`

	_, err := storyline.Parse([]byte(doc), storyline.RequireTarget())
	assert.ErrorIs(t, err, domain.ErrMissingTarget)

	sl, err := storyline.Parse([]byte(doc))
	require.NoError(t, err)
	step, _ := sl.Step(domain.StepRef{MissionID: "m", StepID: "step-1"})
	assert.Equal(t, domain.TriggerQueue, step.TriggerMode())
}

func TestParse_InvalidDocuments(t *testing.T) {
	_, err := storyline.Parse([]byte(`{not json`))
	assert.ErrorIs(t, err, storyline.ErrInvalidDocument)

	_, err = storyline.Parse([]byte(`{"missions": []}`))
	assert.ErrorIs(t, err, storyline.ErrInvalidDocument)

	sl, err := storyline.Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, sl.Missions)
	assert.Len(t, sl.Diagnostics, 1)
}

const yamlStoryline = `
missions:
  intro:
    title: Welcome
    steps:
      step-1:
        npcId: elder
        dialog:
          - name: Elder
            line: Hello, $player
          - type: input.select
            question: Red or blue?
            storeKey: color
            choices:
              - text: Red
                value: red
              - text: Blue
                value: blue
  2:
    depend:
      - storeKey: color
        value: red
    steps:
      step-1:
        dialog:
          - line: You chose red.
`

func TestParseYAML(t *testing.T) {
	sl, err := storyline.ParseYAML([]byte(yamlStoryline))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "intro"}, sl.MissionIDs())

	step, ok := sl.Step(domain.StepRef{MissionID: "intro", StepID: "step-1"})
	require.True(t, ok)
	sel := step.Dialog.At(1).(*domain.Select)
	assert.Equal(t, "color", sel.StoreKey)
	require.NotNil(t, sel.Choices[1].Value)
	assert.Equal(t, "blue", *sel.Choices[1].Value)

	m, _ := sl.Mission("2")
	assert.Equal(t, []domain.Dependency{domain.RequiresValue("color", "red")}, m.Depend)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "story.json")
	yamlPath := filepath.Join(dir, "story.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(gatedStoryline), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlStoryline), 0644))

	sl, err := storyline.Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, sl.Missions, 2)

	sl, err = storyline.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, sl.Missions, 2)

	_, err = storyline.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
