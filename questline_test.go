package questline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storylineJSON = `{
  "missions": {
    "intro": {
      "steps": {
        "step-1": {"npcId": "elder", "dialog": [{"name": "Elder", "line": "Hi"}]}
      }
    }
  }
}`

func writeStoryline(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_LoadsAndPlays(t *testing.T) {
	eng, err := New(writeStoryline(t, "story.json", storylineJSON))
	require.NoError(t, err)
	require.Contains(t, eng.Storyline.Missions, "intro")

	ctx := context.Background()
	backend := memory.NewAnswerBackend()
	g, err := eng.NewGame(ctx, "s1", session.WithAnswerBackend(backend))
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.GoTo(ctx, "elder"))
	id, err := g.Interact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "intro/step-1", id)

	assert.Contains(t, eng.Graph(g), "class intro__step_1 active;")

	_, err = g.Coordinator.Advance(ctx, dialog.NoAnswer())
	require.NoError(t, err)

	stored, err := backend.Load(ctx, answers.DefaultNamespace)
	require.NoError(t, err)
	assert.Equal(t, domain.DoneValue, stored["intro/step-1/done"])
	assert.Contains(t, eng.Graph(g), "class intro__step_1 done;")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeStoryline(t, "story.yaml", `
missions:
  intro:
    steps:
      step-1:
        dialog: [{line: "untargeted"}]
`)
	_, err = New(path)
	assert.NoError(t, err)

	_, err = New(path, WithStrictTargets())
	assert.ErrorIs(t, err, domain.ErrMissingTarget)
}

func TestEngine_Validate(t *testing.T) {
	eng, err := New(writeStoryline(t, "story.json", storylineJSON))
	require.NoError(t, err)

	// Without a world file targets are not checked.
	assert.NoError(t, eng.Validate().Err())

	world, err := memory.ParseWorldDef([]byte("characters: [{id: smith, x: 0, y: 0}]"))
	require.NoError(t, err)
	eng = NewFromStoryline(eng.Storyline, WithWorld(world))
	assert.ErrorContains(t, eng.Validate().Err(), `unknown npc "elder"`)
}

func TestEngine_Factory(t *testing.T) {
	eng, err := New(writeStoryline(t, "story.json", storylineJSON))
	require.NoError(t, err)

	var namespaces []string
	mgr := session.NewManager(eng.Factory(func(id string) []session.GameOption {
		namespaces = append(namespaces, id)
		return []session.GameOption{session.WithNamespace(id)}
	}))
	ctx := context.Background()
	id, err := mgr.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, namespaces)

	require.NoError(t, mgr.Do(ctx, id, func(ctx context.Context, g *session.Game) error {
		assert.Equal(t, id, g.Answers.Namespace())
		return nil
	}))
	mgr.Close(ctx)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
}
