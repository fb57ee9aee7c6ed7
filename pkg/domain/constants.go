package domain

import "strings"

const (
	// EndOfDialog is the nextLine sentinel that terminates a dialog.
	EndOfDialog = "$EOD"
	// PlayerPlaceholder is replaced with the player display name at presentation time.
	PlayerPlaceholder = "$player"
	// DefaultFirstStep is used when a mission does not declare firstStep.
	DefaultFirstStep = "step-1"
	// Wildcard subscribes an answer listener to every key.
	Wildcard = "*"
	// TileSize is the width of a map tile in world units.
	TileSize = 32
	// DoneValue is written under a step's done key when its dialog completes.
	DoneValue = "true"
	// PlayerNameKey is the answer key holding the player display name.
	PlayerNameKey = "player_name"
)

// Remote counter namespaces. They feed different dashboards and are kept apart.
const (
	MissionCounterPrefix  = "MISSION/"
	ResponseCounterPrefix = "USER_RESPONSE/"
)

// Defaults substituted for missing authoring text.
const (
	DefaultMissionTitle       = "Unnamed Mission"
	DefaultMissionDescription = "no description"
	DefaultStepTitle          = "Unnamed Step"
	DefaultSpeaker            = "John Doe"
	DefaultText               = "..."
	DefaultChoiceText         = "Ok"
	DefaultPlayerName         = "Player"
)

// MissionCounterKey is the remote counter bumped when a step completes.
func MissionCounterKey(ref StepRef) string {
	return MissionCounterPrefix + ref.DoneKey()
}

// ResponseCounterKey is the remote counter bumped when a Select answer is stored.
func ResponseCounterKey(storeKey string) string {
	return ResponseCounterPrefix + storeKey
}

// ResolvePlayer replaces every PlayerPlaceholder in text with name.
func ResolvePlayer(text, name string) string {
	if name == "" {
		name = DefaultPlayerName
	}
	return strings.ReplaceAll(text, PlayerPlaceholder, name)
}
