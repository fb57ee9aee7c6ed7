package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
	"gopkg.in/yaml.v3"
)

// CharacterDef describes an NPC in a world file.
type CharacterDef struct {
	ID   string  `yaml:"id" json:"id"`
	Name string  `yaml:"name,omitempty" json:"name,omitempty"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
}

// LocationDef describes a named map location in a world file.
type LocationDef struct {
	ID string  `yaml:"id" json:"id"`
	X  float64 `yaml:"x" json:"x"`
	Y  float64 `yaml:"y" json:"y"`
}

// WorldDef is the static description of a map. Every game instantiates its own World from it.
type WorldDef struct {
	Player     domain.Position `yaml:"player" json:"player"`
	Characters []CharacterDef  `yaml:"characters" json:"characters"`
	Locations  []LocationDef   `yaml:"locations" json:"locations"`
}

// ParseWorldDef decodes a world definition. JSON documents are accepted too.
func ParseWorldDef(data []byte) (*WorldDef, error) {
	var def WorldDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	for i, c := range def.Characters {
		if c.ID == "" {
			return nil, fmt.Errorf("character #%d has no id", i)
		}
	}
	for i, l := range def.Locations {
		if l.ID == "" {
			return nil, fmt.Errorf("location #%d has no id", i)
		}
	}
	return &def, nil
}

// LoadWorldDef reads a world definition from disk.
func LoadWorldDef(path string) (*WorldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return ParseWorldDef(data)
}

// WorldFromStoryline lays out every NPC and location the storyline references on a grid,
// four tiles apart so proximity areas never overlap.
func WorldFromStoryline(sl *domain.Storyline) *WorldDef {
	npcs := map[string]bool{}
	locations := map[string]bool{}
	for _, m := range sl.Missions {
		for _, s := range m.Steps {
			if s.NPCID != "" {
				npcs[s.NPCID] = true
			}
			if s.LocationID != "" {
				locations[s.LocationID] = true
			}
			if s.MoveTo != "" {
				locations[s.MoveTo] = true
			}
		}
	}

	def := &WorldDef{Player: domain.Tile(0, 0)}
	for i, id := range sortedKeys(npcs) {
		p := domain.Tile(4*(i+1), 4)
		def.Characters = append(def.Characters, CharacterDef{ID: id, Name: id, X: p.X, Y: p.Y})
	}
	for i, id := range sortedKeys(locations) {
		p := domain.Tile(4*(i+1), 8)
		def.Locations = append(def.Locations, LocationDef{ID: id, X: p.X, Y: p.Y})
	}
	return def
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// World implements ports.World and ports.Mover in memory.
// Safe for concurrent use.
type World struct {
	mu         sync.RWMutex
	player     domain.Position
	characters map[string]*Character
	order      []string
	locations  map[string]domain.Position
	locOrder   []string
}

// Instantiate creates a fresh World. Mission marks start cleared.
func (d *WorldDef) Instantiate() *World {
	w := &World{
		player:     d.Player,
		characters: make(map[string]*Character),
		locations:  make(map[string]domain.Position),
	}
	for _, c := range d.Characters {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		if _, dup := w.characters[c.ID]; !dup {
			w.order = append(w.order, c.ID)
		}
		w.characters[c.ID] = &Character{id: c.ID, name: name, pos: domain.Position{X: c.X, Y: c.Y}}
	}
	for _, l := range d.Locations {
		if _, dup := w.locations[l.ID]; !dup {
			w.locOrder = append(w.locOrder, l.ID)
		}
		w.locations[l.ID] = domain.Position{X: l.X, Y: l.Y}
	}
	return w
}

// Character looks up an NPC.
func (w *World) Character(id string) (ports.Character, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.characters[id]
	if !ok {
		return nil, false
	}
	return c, true
}

// Location looks up a named location.
func (w *World) Location(id string) (domain.Position, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.locations[id]
	return p, ok
}

// Characters returns every NPC in declaration order.
func (w *World) Characters() []*Character {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Character, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.characters[id])
	}
	return out
}

// LocationIDs returns every location id in declaration order.
func (w *World) LocationIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.locOrder...)
}

// Player returns the player position.
func (w *World) Player() domain.Position {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.player
}

// SetPlayer moves the player without any transition.
func (w *World) SetPlayer(p domain.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player = p
}

// MoveTo teleports the player onto a character or a location.
func (w *World) MoveTo(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.locations[id]; ok {
		w.player = p
		return nil
	}
	if c, ok := w.characters[id]; ok {
		w.player = c.Position()
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
}

// Character is an NPC of the in-memory world.
type Character struct {
	mu     sync.RWMutex
	id     string
	name   string
	pos    domain.Position
	marked bool
}

func (c *Character) ID() string                { return c.id }
func (c *Character) Name() string              { return c.name }
func (c *Character) Position() domain.Position { return c.pos }

// ShowMissionMark toggles the "mission available" indicator.
func (c *Character) ShowMissionMark(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marked = visible
}

// HasMissionMark reports whether the indicator is visible.
func (c *Character) HasMissionMark() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.marked
}
