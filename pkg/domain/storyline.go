package domain

import (
	"sort"
	"strings"
)

// StepRef identifies a mission step inside the storyline arena.
type StepRef struct {
	MissionID string `json:"mission_id"`
	StepID    string `json:"step_id"`
}

// DialogID is the coordinator registration id of the step: "<missionId>/<stepId>".
func (r StepRef) DialogID() string {
	return r.MissionID + "/" + r.StepID
}

// DoneKey is the answer store key written when the step's dialog completes.
func (r StepRef) DoneKey() string {
	return r.DialogID() + "/done"
}

// NextKey is the answer store key holding the step a completed dialog routed to,
// written only when an item override replaced the step's default nextStep.
func (r StepRef) NextKey() string {
	return r.DialogID() + "/next"
}

// ParseDialogID splits a "<missionId>/<stepId>" registration id.
func ParseDialogID(id string) (StepRef, bool) {
	mission, step, ok := strings.Cut(id, "/")
	if !ok || mission == "" || step == "" {
		return StepRef{}, false
	}
	return StepRef{MissionID: mission, StepID: step}, true
}

// TriggerMode says how a registered step gets triggered.
type TriggerMode int

const (
	// TriggerQueue fires on the next poll regardless of the player position.
	TriggerQueue TriggerMode = iota
	// TriggerNPC fires when the player interacts near the NPC.
	TriggerNPC
	// TriggerLocation fires when the player walks near the location.
	TriggerLocation
)

func (m TriggerMode) String() string {
	switch m {
	case TriggerNPC:
		return "npc"
	case TriggerLocation:
		return "location"
	default:
		return "queue"
	}
}

// MissionStep is one attachable unit of a mission.
type MissionStep struct {
	ID          string
	MissionID   string
	Title       string
	Description string
	// NextStep is the default successor once the dialog completes. Empty ends the chain.
	NextStep   string
	NPCID      string
	LocationID string
	// MoveTo names a location the player is moved to before the dialog starts.
	MoveTo string
	Dialog *Dialog
}

// Ref returns the arena reference of the step.
func (s *MissionStep) Ref() StepRef {
	return StepRef{MissionID: s.MissionID, StepID: s.ID}
}

// TriggerMode resolves the attachment with precedence NPC > location > queue.
func (s *MissionStep) TriggerMode() TriggerMode {
	switch {
	case s.NPCID != "":
		return TriggerNPC
	case s.LocationID != "":
		return TriggerLocation
	default:
		return TriggerQueue
	}
}

// Mission is a dependency-gated unit of questline content.
type Mission struct {
	ID          string
	Title       string
	Description string
	FirstStep   string
	Depend      []Dependency
	Steps       map[string]*MissionStep
}

// NewMission creates a mission without steps.
func NewMission(id, title, description, firstStep string, depend []Dependency) *Mission {
	return &Mission{
		ID:          id,
		Title:       title,
		Description: description,
		FirstStep:   firstStep,
		Depend:      depend,
		Steps:       make(map[string]*MissionStep),
	}
}

// AddStep attaches a step to the mission and sets its back reference.
func (m *Mission) AddStep(step *MissionStep) {
	step.MissionID = m.ID
	if step.Dialog != nil {
		step.Dialog.Step = step.Ref()
	}
	m.Steps[step.ID] = step
}

// Step looks up a step by id.
func (m *Mission) Step(id string) (*MissionStep, bool) {
	s, ok := m.Steps[id]
	return s, ok
}

// StepIDs returns step ids in lexical order.
func (m *Mission) StepIDs() []string {
	ids := make([]string, 0, len(m.Steps))
	for id := range m.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsReady reports whether every dependency is satisfied by the answers.
// Missions without dependencies are always ready. It never writes.
func (m *Mission) IsReady(answers AnswerView) bool {
	for _, dep := range m.Depend {
		if !dep.SatisfiedBy(answers) {
			return false
		}
	}
	return true
}

// Diagnostic is an authoring problem found while parsing.
type Diagnostic struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return d.Path + ": " + d.Message
}

// Storyline is the arena owning every mission and step.
type Storyline struct {
	Missions    map[string]*Mission
	Diagnostics []Diagnostic
}

// NewStoryline creates an empty storyline.
func NewStoryline() *Storyline {
	return &Storyline{Missions: make(map[string]*Mission)}
}

// AddMission stores a mission, replacing any mission with the same id.
func (s *Storyline) AddMission(m *Mission) {
	s.Missions[m.ID] = m
}

// Mission looks up a mission by id.
func (s *Storyline) Mission(id string) (*Mission, bool) {
	m, ok := s.Missions[id]
	return m, ok
}

// Step resolves a step reference.
func (s *Storyline) Step(ref StepRef) (*MissionStep, bool) {
	m, ok := s.Missions[ref.MissionID]
	if !ok {
		return nil, false
	}
	return m.Step(ref.StepID)
}

// MissionIDs returns mission ids in lexical order, which is also the activation order.
func (s *Storyline) MissionIDs() []string {
	ids := make([]string, 0, len(s.Missions))
	for id := range s.Missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
