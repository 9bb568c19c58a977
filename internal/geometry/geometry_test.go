package geometry

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestDistance(t *testing.T) {
	testutil.AssertEqual(t, "3-4-5", Distance(Position{X: 0, Y: 0}, Position{X: 3, Y: 4}), 5.0)
	testutil.AssertEqual(t, "same point", Distance(Position{X: 7, Y: 7}, Position{X: 7, Y: 7}), 0.0)
}

func TestContains(t *testing.T) {
	pos := Position{X: 10, Y: 10}
	size := Size{Width: 20, Height: 10}

	tests := map[string]struct {
		p   Position
		exp bool
	}{
		"inside":         {p: Position{X: 15, Y: 15}, exp: true},
		"top-left edge":  {p: Position{X: 10, Y: 10}, exp: true},
		"right edge":     {p: Position{X: 30, Y: 15}, exp: false},
		"bottom edge":    {p: Position{X: 15, Y: 20}, exp: false},
		"outside left":   {p: Position{X: 9, Y: 15}, exp: false},
		"outside bottom": {p: Position{X: 15, Y: 40}, exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "contains", Contains(pos, size, tt.p), tt.exp)
		})
	}
}

func TestOverlaps(t *testing.T) {
	size := Size{Width: 10, Height: 10}

	tests := map[string]struct {
		a, b Position
		exp  bool
	}{
		"identical":      {a: Position{X: 0, Y: 0}, b: Position{X: 0, Y: 0}, exp: true},
		"partial":        {a: Position{X: 0, Y: 0}, b: Position{X: 5, Y: 5}, exp: true},
		"touching edges": {a: Position{X: 0, Y: 0}, b: Position{X: 10, Y: 0}, exp: false},
		"apart":          {a: Position{X: 0, Y: 0}, b: Position{X: 50, Y: 50}, exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "overlaps", Overlaps(tt.a, size, tt.b, size), tt.exp)
			testutil.AssertEqual(t, "symmetric", Overlaps(tt.b, size, tt.a, size), tt.exp)
		})
	}
}

func TestCircleOverlapsBox(t *testing.T) {
	pos := Position{X: 100, Y: 100}
	size := Size{Width: 20, Height: 20}

	testutil.AssertEqual(t, "center inside", CircleOverlapsBox(Position{X: 110, Y: 110}, 5, pos, size), true)
	testutil.AssertEqual(t, "near edge", CircleOverlapsBox(Position{X: 95, Y: 110}, 10, pos, size), true)
	testutil.AssertEqual(t, "far away", CircleOverlapsBox(Position{X: 10, Y: 10}, 10, pos, size), false)
}

func TestClampToRoom(t *testing.T) {
	testutil.AssertEqual(t, "inside", ClampToRoom(Position{X: 5, Y: 5}), Position{X: 5, Y: 5})
	testutil.AssertEqual(t, "negative", ClampToRoom(Position{X: -5, Y: -1}), Position{X: 0, Y: 0})
	testutil.AssertEqual(t, "overflow", ClampToRoom(Position{X: 5000, Y: 900}), Position{X: RoomWidth, Y: RoomHeight})
	testutil.AssertEqual(t, "in room", InRoom(Position{X: RoomWidth, Y: RoomHeight}), true)
	testutil.AssertEqual(t, "out of room", InRoom(Position{X: RoomWidth + 1, Y: 0}), false)
}

func TestNormalize(t *testing.T) {
	testutil.AssertEqual(t, "grid position", NormalizePosition(Position{X: 2, Y: 3}, UnitGrid), Position{X: 60, Y: 90})
	testutil.AssertEqual(t, "pixel position", NormalizePosition(Position{X: 2, Y: 3}, UnitPixel), Position{X: 2, Y: 3})
	testutil.AssertEqual(t, "empty unit", NormalizePosition(Position{X: 2, Y: 3}, ""), Position{X: 2, Y: 3})
	testutil.AssertEqual(t, "grid size", NormalizeSize(Size{Width: 2, Height: 1}, UnitGrid), Size{Width: 60, Height: 30})
	testutil.AssertEqual(t, "round trip", PixelToGrid(GridToPixel(Position{X: 12, Y: 4})), Position{X: 12, Y: 4})
	testutil.AssertEqual(t, "default center", DefaultAssistantPosition(), Position{X: 960, Y: 240})
}
