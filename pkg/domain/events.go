package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDialogStart      EventType = "dialog_start"
	EventDialogDone       EventType = "dialog_done"
	EventAnswer           EventType = "answer"
	EventMissionActivated EventType = "mission_activated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DialogEvent represents a dialog starting or finishing.
type DialogEvent struct {
	EventBase
	DialogID string `json:"dialog_id"`
	Mission  string `json:"mission"`
	Step     string `json:"step"`
	// NextStep is the resolved successor, only set on completion.
	NextStep string `json:"next_step,omitempty"`
	// Trigger is how the dialog was attached (npc, location or queue).
	Trigger string `json:"trigger,omitempty"`
}

// AnswerEvent represents an answer recorded from a Select or Prompt item.
type AnswerEvent struct {
	EventBase
	DialogID string   `json:"dialog_id"`
	StoreKey string   `json:"store_key"`
	Value    string   `json:"value"`
	Kind     ItemKind `json:"kind"`
}

// MissionEvent represents a mission whose first step got registered.
type MissionEvent struct {
	EventBase
	Mission   string `json:"mission"`
	FirstStep string `json:"first_step"`
	// Deferred is true when the mission waited on its dependencies.
	Deferred bool `json:"deferred"`
}

// NewEventBase stamps an event of the given type.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnDialogStart      func(context.Context, *DialogEvent)
	OnDialogDone       func(context.Context, *DialogEvent)
	OnAnswer           func(context.Context, *AnswerEvent)
	OnMissionActivated func(context.Context, *MissionEvent)
}
