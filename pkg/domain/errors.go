package domain

import "errors"

// ErrDuplicateDialog is returned when a dialog id is registered twice.
var ErrDuplicateDialog = errors.New("dialog already registered")

// ErrDialogNotFound is returned when a dialog id is not registered.
var ErrDialogNotFound = errors.New("dialog not registered")

// ErrDialogInProgress is returned when a dialog is started while another one is active.
var ErrDialogInProgress = errors.New("a dialog is already in progress")

// ErrNoActiveDialog is returned when an operation needs an active dialog and none is running.
var ErrNoActiveDialog = errors.New("no dialog in progress")

// ErrCharacterNotFound is returned when a step references an unknown NPC.
var ErrCharacterNotFound = errors.New("character not found")

// ErrLocationNotFound is returned when a step references an unknown map location.
var ErrLocationNotFound = errors.New("location not found")

// ErrMissionNotFound is returned when a mission id cannot be found in the storyline.
var ErrMissionNotFound = errors.New("mission not found")

// ErrStepNotFound is returned when a step id cannot be found in its mission.
var ErrStepNotFound = errors.New("step not found")

// ErrMissingTarget is returned in strict mode when a step has neither npcId nor locationId.
var ErrMissingTarget = errors.New("step has neither npcId nor locationId")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")
