package layout

import (
	"testing"

	"github.com/hellenic-development/figma-import/pkg/figma"

	"github.com/stretchr/testify/assert"
)

func rect(x, y, w, h float64) figma.Rectangle {
	return figma.Rectangle{X: x, Y: y, Width: w, Height: h}
}

func TestMapToTarget(t *testing.T) {
	tests := []struct {
		name         string
		node, frame  figma.Rectangle
		wantPosition Vector2
		wantSize     Vector2
	}{
		{
			name:         "child inside frame at origin",
			node:         rect(10, 10, 50, 20),
			frame:        rect(0, 0, 200, 100),
			wantPosition: Vector2{X: 35, Y: -20},
			wantSize:     Vector2{X: 50, Y: 20},
		},
		{
			name:         "node equal to frame is not at the origin",
			node:         rect(0, 0, 200, 100),
			frame:        rect(0, 0, 200, 100),
			wantPosition: Vector2{X: 100, Y: -50},
			wantSize:     Vector2{X: 200, Y: 100},
		},
		{
			name:         "frame offset in the document",
			node:         rect(1010, -490, 40, 10),
			frame:        rect(1000, -500, 300, 300),
			wantPosition: Vector2{X: 30, Y: -15},
			wantSize:     Vector2{X: 40, Y: 10},
		},
		{
			name:         "node left of and above the frame",
			node:         rect(-20, -20, 10, 10),
			frame:        rect(0, 0, 100, 100),
			wantPosition: Vector2{X: -15, Y: 15},
			wantSize:     Vector2{X: 10, Y: 10},
		},
		{
			name:         "fractional center",
			node:         rect(5, 5, 5, 5),
			frame:        rect(0, 0, 300, 300),
			wantPosition: Vector2{X: 7.5, Y: -7.5},
			wantSize:     Vector2{X: 5, Y: 5},
		},
		{
			name:         "zero sized node",
			node:         rect(3, 4, 0, 0),
			frame:        rect(0, 0, 10, 10),
			wantPosition: Vector2{X: 3, Y: -4},
			wantSize:     Vector2{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToTarget(tt.node, tt.frame)
			assert.Equal(t, tt.wantPosition, got.Position)
			assert.Equal(t, tt.wantSize, got.Size)
		})
	}
}

func TestMapToTargetIsPure(t *testing.T) {
	node, frame := rect(12.25, 40.5, 33, 17), rect(2, 3, 400, 200)
	assert.Equal(t, MapToTarget(node, frame), MapToTarget(node, frame))
}

func TestFramePlacement(t *testing.T) {
	got := FramePlacement(rect(120, -40, 375, 812))
	assert.Equal(t, Vector2{}, got.Position)
	assert.Equal(t, Vector2{X: 375, Y: 812}, got.Size)
}

func TestVector2String(t *testing.T) {
	assert.Equal(t, "(7.5, -7.5)", Vector2{X: 7.5, Y: -7.5}.String())
}
