package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const worldYAML = `
player: {x: 0, y: 0}
characters:
  - id: elder
    name: Village Elder
    x: 128
    y: 64
locations:
  - id: well
    x: 320
    y: 320
`

func TestParseWorldDef(t *testing.T) {
	def, err := memory.ParseWorldDef([]byte(worldYAML))
	require.NoError(t, err)

	w := def.Instantiate()
	c, ok := w.Character("elder")
	require.True(t, ok)
	assert.Equal(t, "Village Elder", c.Name())
	assert.Equal(t, domain.Position{X: 128, Y: 64}, c.Position())

	p, ok := w.Location("well")
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 320, Y: 320}, p)

	_, ok = w.Character("ghost")
	assert.False(t, ok)
}

func TestParseWorldDef_JSON(t *testing.T) {
	def, err := memory.ParseWorldDef([]byte(`{"characters":[{"id":"elder","x":1,"y":2}]}`))
	require.NoError(t, err)
	c, ok := def.Instantiate().Character("elder")
	require.True(t, ok)
	assert.Equal(t, "elder", c.Name(), "name defaults to id")
}

func TestParseWorldDef_MissingID(t *testing.T) {
	_, err := memory.ParseWorldDef([]byte("characters:\n  - name: nobody\n"))
	assert.Error(t, err)
}

func TestWorld_InstancesAreIsolated(t *testing.T) {
	def, err := memory.ParseWorldDef([]byte(worldYAML))
	require.NoError(t, err)

	a, b := def.Instantiate(), def.Instantiate()
	ca, _ := a.Character("elder")
	ca.ShowMissionMark(true)

	assert.True(t, a.Characters()[0].HasMissionMark())
	assert.False(t, b.Characters()[0].HasMissionMark())
}

func TestWorld_MoveTo(t *testing.T) {
	ctx := context.Background()
	def, err := memory.ParseWorldDef([]byte(worldYAML))
	require.NoError(t, err)
	w := def.Instantiate()

	require.NoError(t, w.MoveTo(ctx, "well"))
	assert.Equal(t, domain.Position{X: 320, Y: 320}, w.Player())

	require.NoError(t, w.MoveTo(ctx, "elder"))
	assert.Equal(t, domain.Position{X: 128, Y: 64}, w.Player())

	err = w.MoveTo(ctx, "atlantis")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestWorldFromStoryline(t *testing.T) {
	sl := domain.NewStoryline()
	m := domain.NewMission("intro", "", "", domain.DefaultFirstStep, nil)
	m.AddStep(&domain.MissionStep{ID: "step-1", NPCID: "elder", MoveTo: "square"})
	m.AddStep(&domain.MissionStep{ID: "step-2", LocationID: "well"})
	sl.AddMission(m)

	w := memory.WorldFromStoryline(sl).Instantiate()

	_, ok := w.Character("elder")
	assert.True(t, ok)
	assert.Equal(t, []string{"square", "well"}, w.LocationIDs())

	elder, _ := w.Character("elder")
	assert.GreaterOrEqual(t, elder.Position().Distance(w.Player()), float64(2*domain.TileSize))
}
