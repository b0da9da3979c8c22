// Package layout converts Figma absolute bounding boxes into placements for a
// center-anchored, Y-up UI coordinate system.
//
// Figma boxes are absolute, top-left anchored and grow downward. A placement is
// the offset of the object's center from its parent's center, with Y growing
// upward, plus the unscaled size.
package layout

import (
	"fmt"

	"github.com/hellenic-development/figma-import/pkg/figma"
)

// Vector2 is a single precision 2D vector in target space.
type Vector2 struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Placement is the position and size of an object relative to its parent.
type Placement struct {
	Position Vector2 `json:"position" yaml:"position"`
	Size     Vector2 `json:"size" yaml:"size"`
}

// MapToTarget maps node, given in absolute document coordinates, into the frame's
// center-anchored space. The node center is translated into frame-local top-left space
// and the Y axis is flipped:
//
//	position = (node.x - frame.x + w/2, -(node.y - frame.y + h/2))
//	size     = (w, h)
func MapToTarget(node, frame figma.Rectangle) Placement {
	relX := node.X - frame.X
	relY := node.Y - frame.Y

	centerX := relX + node.Width/2
	centerY := relY + node.Height/2

	return Placement{
		Position: Vector2{X: float32(centerX), Y: float32(-centerY)},
		Size:     Vector2{X: float32(node.Width), Y: float32(node.Height)},
	}
}

// FramePlacement returns the placement of the frame container itself: centered on its
// parent with zero offset and sized to the frame's bounding box.
func FramePlacement(frame figma.Rectangle) Placement {
	return Placement{
		Size: Vector2{X: float32(frame.Width), Y: float32(frame.Height)},
	}
}
