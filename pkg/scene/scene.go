// Package scene materializes imported frames into a UI scene graph.
//
// A Scene holds canvases. Each import adds a frame container, sized to the Figma
// frame and centered on its canvas, with one image object per placement. Children
// are appended in placement order, so later placements draw on top of earlier ones.
// Scenes can be saved to and loaded from a YAML or JSON manifest that a host engine
// consumes.
package scene

import (
	"strings"

	"github.com/hellenic-development/figma-import/pkg/layout"
)

// Object kinds.
const (
	KindCanvas = "canvas"
	KindFrame  = "frame"
	KindImage  = "image"
)

// Defaults applied to containers created by ResolveOrCreateContainer.
const (
	DefaultCanvasName = "FigmaCanvas"
	FrameObjectName   = "FigmaFrame"

	RenderModeScreenSpaceOverlay = "ScreenSpaceOverlay"
	ScaleModeScaleWithScreenSize = "ScaleWithScreenSize"
)

// DefaultReferenceResolution is the reference resolution of new canvases (portrait phone).
var DefaultReferenceResolution = layout.Vector2{X: 1080, Y: 1920}

// centerAnchor pins an object's anchors to the center of its parent.
var centerAnchor = layout.Vector2{X: 0.5, Y: 0.5}

// Placement is the target-space record of one imported layer.
type Placement struct {
	ID       string         `json:"id" yaml:"id"`
	Image    string         `json:"image" yaml:"image"`
	Position layout.Vector2 `json:"position" yaml:"position"`
	Size     layout.Vector2 `json:"size" yaml:"size"`
}

// CanvasSettings configures how a canvas renders and scales.
type CanvasSettings struct {
	RenderMode          string         `json:"renderMode" yaml:"renderMode"`
	ScaleMode           string         `json:"scaleMode" yaml:"scaleMode"`
	ReferenceResolution layout.Vector2 `json:"referenceResolution" yaml:"referenceResolution"`
	Raycaster           bool           `json:"raycaster" yaml:"raycaster"`
}

// Object is a node of the scene graph.
type Object struct {
	Name      string          `json:"name" yaml:"name"`
	Kind      string          `json:"kind" yaml:"kind"`
	AnchorMin layout.Vector2  `json:"anchorMin" yaml:"anchorMin"`
	AnchorMax layout.Vector2  `json:"anchorMax" yaml:"anchorMax"`
	Position  layout.Vector2  `json:"position" yaml:"position"`
	Size      layout.Vector2  `json:"size" yaml:"size"`
	Image     string          `json:"image,omitempty" yaml:"image,omitempty"`
	Canvas    *CanvasSettings `json:"canvas,omitempty" yaml:"canvas,omitempty"`
	Children  []*Object       `json:"children,omitempty" yaml:"children,omitempty"`
}

// Add appends child as the last (top-most) child of o.
func (o *Object) Add(child *Object) {
	o.Children = append(o.Children, child)
}

// Target receives the output of an import.
type Target interface {
	// ResolveOrCreateContainer returns the canvas named name, matched case-insensitively.
	// When name is empty or no canvas matches, a new default-configured canvas is created;
	// created reports which case happened.
	ResolveOrCreateContainer(name string) (container *Object, created bool)
	// Build adds a frame object sized to frameSize under container and one image object per
	// placement, parented in the given order. It returns the frame object.
	Build(container *Object, frameName string, frame layout.Placement, placements []Placement) *Object
}

// Scene is an in-memory scene graph. The zero value is an empty scene.
type Scene struct {
	RunID    string    `json:"runId,omitempty" yaml:"runId,omitempty"`
	Canvases []*Object `json:"canvases" yaml:"canvases"`
}

var _ Target = (*Scene)(nil)

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// FindCanvas returns the first canvas whose name equals name, ignoring case.
func (s *Scene) FindCanvas(name string) (*Object, bool) {
	for _, c := range s.Canvases {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// ResolveOrCreateContainer implements Target.
func (s *Scene) ResolveOrCreateContainer(name string) (*Object, bool) {
	if name != "" {
		if c, ok := s.FindCanvas(name); ok {
			return c, false
		}
	} else {
		name = DefaultCanvasName
	}

	canvas := &Object{
		Name: name,
		Kind: KindCanvas,
		Canvas: &CanvasSettings{
			RenderMode:          RenderModeScreenSpaceOverlay,
			ScaleMode:           ScaleModeScaleWithScreenSize,
			ReferenceResolution: DefaultReferenceResolution,
			Raycaster:           true,
		},
	}
	s.Canvases = append(s.Canvases, canvas)

	return canvas, true
}

// Build implements Target.
func (s *Scene) Build(container *Object, frameName string, frame layout.Placement, placements []Placement) *Object {
	if frameName == "" {
		frameName = FrameObjectName
	}

	frameObj := &Object{
		Name:      frameName,
		Kind:      KindFrame,
		AnchorMin: centerAnchor,
		AnchorMax: centerAnchor,
		Position:  frame.Position,
		Size:      frame.Size,
	}
	container.Add(frameObj)

	for _, p := range placements {
		frameObj.Add(&Object{
			Name:      p.ID,
			Kind:      KindImage,
			AnchorMin: centerAnchor,
			AnchorMax: centerAnchor,
			Position:  p.Position,
			Size:      p.Size,
			Image:     p.Image,
		})
	}

	return frameObj
}

// Walk calls fn for every object of the scene in pre-order.
func (s *Scene) Walk(fn func(obj *Object, depth int)) {
	var walk func(o *Object, depth int)
	walk = func(o *Object, depth int) {
		fn(o, depth)
		for _, c := range o.Children {
			walk(c, depth+1)
		}
	}
	for _, c := range s.Canvases {
		walk(c, 0)
	}
}
