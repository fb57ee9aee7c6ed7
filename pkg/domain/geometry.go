package domain

import "math"

// Position is a point in world units.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance is the Euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Tile returns the top-left corner of the tile at (col, row).
func Tile(col, row int) Position {
	return Position{X: float64(col * TileSize), Y: float64(row * TileSize)}
}
