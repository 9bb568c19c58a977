// Package geometry holds the pure coordinate helpers used by the store's
// spatial queries. All positions are in pixels unless stated otherwise.
package geometry

import "math"

const (
	RoomWidth  = 1920
	RoomHeight = 480

	// GridCellSize is the pixel size of one cell of the legacy 64x16 grid.
	GridCellSize = 30
	GridWidth    = RoomWidth / GridCellSize
	GridHeight   = RoomHeight / GridCellSize

	// ProximityThreshold is the distance under which two things are "near".
	ProximityThreshold = 50

	// AssistantRadius is the collision radius of the assistant's footprint.
	AssistantRadius = ProximityThreshold / 2
)

// Unit names the coordinate system of an inbound position.
type Unit string

const (
	UnitPixel Unit = "pixel"
	UnitGrid  Unit = "grid"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Center returns the center point of a box anchored at its top-left corner.
func Center(pos Position, size Size) Position {
	return Position{X: pos.X + size.Width/2, Y: pos.Y + size.Height/2}
}

// Contains reports whether p lies inside the box at pos with the given size.
// The top and left edges are inclusive, the bottom and right exclusive.
func Contains(pos Position, size Size, p Position) bool {
	return p.X >= pos.X && p.X < pos.X+size.Width &&
		p.Y >= pos.Y && p.Y < pos.Y+size.Height
}

// Overlaps reports whether two boxes share any area. Touching edges do
// not overlap.
func Overlaps(posA Position, sizeA Size, posB Position, sizeB Size) bool {
	return posA.X < posB.X+sizeB.Width && posB.X < posA.X+sizeA.Width &&
		posA.Y < posB.Y+sizeB.Height && posB.Y < posA.Y+sizeA.Height
}

// CircleOverlapsBox reports whether the circle at c with radius r touches
// the interior of the box.
func CircleOverlapsBox(c Position, r float64, pos Position, size Size) bool {
	nx := math.Max(pos.X, math.Min(c.X, pos.X+size.Width))
	ny := math.Max(pos.Y, math.Min(c.Y, pos.Y+size.Height))
	return math.Hypot(c.X-nx, c.Y-ny) < r
}

// InRoom reports whether p is within [0, RoomWidth] x [0, RoomHeight].
func InRoom(p Position) bool {
	return p.X >= 0 && p.X <= RoomWidth && p.Y >= 0 && p.Y <= RoomHeight
}

// ClampToRoom pulls p back inside the room bounds.
func ClampToRoom(p Position) Position {
	return Position{
		X: math.Max(0, math.Min(RoomWidth, p.X)),
		Y: math.Max(0, math.Min(RoomHeight, p.Y)),
	}
}

// GridToPixel converts a legacy grid cell to the pixel position of its
// top-left corner.
func GridToPixel(g Position) Position {
	return Position{X: g.X * GridCellSize, Y: g.Y * GridCellSize}
}

// PixelToGrid converts a pixel position to the legacy grid cell containing it.
func PixelToGrid(p Position) Position {
	return Position{X: math.Floor(p.X / GridCellSize), Y: math.Floor(p.Y / GridCellSize)}
}

// GridSizeToPixel converts a size measured in grid cells to pixels.
func GridSizeToPixel(s Size) Size {
	return Size{Width: s.Width * GridCellSize, Height: s.Height * GridCellSize}
}

// NormalizePosition converts p from unit into pixels. Unknown and empty
// units are treated as pixels.
func NormalizePosition(p Position, unit Unit) Position {
	if unit == UnitGrid {
		return GridToPixel(p)
	}
	return p
}

// NormalizeSize converts s from unit into pixels.
func NormalizeSize(s Size, unit Unit) Size {
	if unit == UnitGrid {
		return GridSizeToPixel(s)
	}
	return s
}

// DefaultAssistantPosition is the center of the room.
func DefaultAssistantPosition() Position {
	return Position{X: RoomWidth / 2, Y: RoomHeight / 2}
}
