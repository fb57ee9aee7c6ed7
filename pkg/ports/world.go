package ports

import (
	"context"

	"github.com/aretw0/questline/pkg/domain"
)

// Character is an NPC that dialogs can attach to.
type Character interface {
	ID() string
	Name() string
	Position() domain.Position
	// ShowMissionMark toggles the "mission available" indicator above the character.
	ShowMissionMark(visible bool)
}

// World looks up the entities a storyline references.
type World interface {
	Character(id string) (Character, bool)
	Location(id string) (domain.Position, bool)
}

// Mover repositions the player before a dialog starts.
type Mover interface {
	MoveTo(ctx context.Context, locationID string) error
}
