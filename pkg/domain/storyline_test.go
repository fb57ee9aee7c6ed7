package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type answers map[string]string

func (a answers) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

func TestMission_IsReady(t *testing.T) {
	tests := []struct {
		name    string
		depend  []Dependency
		answers answers
		want    bool
	}{
		{
			name: "No Dependencies",
			want: true,
		},
		{
			name:    "Bare Key Missing",
			depend:  []Dependency{Requires("intro/step-1/done")},
			answers: answers{},
			want:    false,
		},
		{
			name:    "Bare Key Present With Any Value",
			depend:  []Dependency{Requires("intro/step-1/done")},
			answers: answers{"intro/step-1/done": "false"},
			want:    true,
		},
		{
			name:    "Value Must Match Exactly",
			depend:  []Dependency{RequiresValue("color", "red")},
			answers: answers{"color": "Red"},
			want:    false,
		},
		{
			name:    "Value Matches",
			depend:  []Dependency{RequiresValue("color", "red")},
			answers: answers{"color": "red"},
			want:    true,
		},
		{
			name:    "Empty Value Must Match Empty String",
			depend:  []Dependency{RequiresValue("nickname", "")},
			answers: answers{"nickname": ""},
			want:    true,
		},
		{
			name:    "All Dependencies Required",
			depend:  []Dependency{Requires("a"), RequiresValue("b", "1")},
			answers: answers{"a": "x", "b": "2"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMission("m", "", "", DefaultFirstStep, tt.depend)
			assert.Equal(t, tt.want, m.IsReady(tt.answers))
		})
	}
}

func TestMission_IsReady_UnrelatedKey(t *testing.T) {
	m := NewMission("m", "", "", DefaultFirstStep, []Dependency{RequiresValue("color", "red")})
	a := answers{"color": "red"}
	before := m.IsReady(a)

	a["weather"] = "rainy"
	assert.Equal(t, before, m.IsReady(a))
	assert.Len(t, a, 2, "IsReady must not write")
}

func TestMission_AddStep_SetsBackReference(t *testing.T) {
	m := NewMission("intro", "Intro", "", DefaultFirstStep, nil)
	step := &MissionStep{ID: "step-1", Dialog: NewDialog(StepRef{})}
	m.AddStep(step)

	assert.Equal(t, "intro", step.MissionID)
	assert.Equal(t, StepRef{MissionID: "intro", StepID: "step-1"}, step.Dialog.Step)
	assert.Equal(t, "intro/step-1", step.Ref().DialogID())
	assert.Equal(t, "intro/step-1/done", step.Ref().DoneKey())
	assert.Equal(t, "intro/step-1/next", step.Ref().NextKey())
}

func TestMissionStep_TriggerMode(t *testing.T) {
	assert.Equal(t, TriggerNPC, (&MissionStep{NPCID: "npc", LocationID: "loc"}).TriggerMode())
	assert.Equal(t, TriggerLocation, (&MissionStep{LocationID: "loc"}).TriggerMode())
	assert.Equal(t, TriggerQueue, (&MissionStep{}).TriggerMode())
	assert.Equal(t, "npc", TriggerNPC.String())
}

func TestStoryline_Lookups(t *testing.T) {
	sl := NewStoryline()
	b := NewMission("b", "", "", DefaultFirstStep, nil)
	a := NewMission("a", "", "", DefaultFirstStep, nil)
	a.AddStep(&MissionStep{ID: "step-2"})
	a.AddStep(&MissionStep{ID: "step-1"})
	sl.AddMission(b)
	sl.AddMission(a)

	assert.Equal(t, []string{"a", "b"}, sl.MissionIDs())
	assert.Equal(t, []string{"step-1", "step-2"}, a.StepIDs())

	step, ok := sl.Step(StepRef{MissionID: "a", StepID: "step-2"})
	assert.True(t, ok)
	assert.Equal(t, "step-2", step.ID)

	_, ok = sl.Step(StepRef{MissionID: "zzz", StepID: "step-1"})
	assert.False(t, ok)
}

func TestParseDialogID(t *testing.T) {
	ref, ok := ParseDialogID("intro/step-1")
	assert.True(t, ok)
	assert.Equal(t, StepRef{MissionID: "intro", StepID: "step-1"}, ref)

	_, ok = ParseDialogID("intro")
	assert.False(t, ok)
	_, ok = ParseDialogID("/step-1")
	assert.False(t, ok)
}
