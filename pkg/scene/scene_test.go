package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hellenic-development/figma-import/pkg/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateContainer(t *testing.T) {
	s := New()

	def, created := s.ResolveOrCreateContainer("")
	require.True(t, created)
	assert.Equal(t, DefaultCanvasName, def.Name)
	assert.Equal(t, KindCanvas, def.Kind)
	require.NotNil(t, def.Canvas)
	assert.Equal(t, RenderModeScreenSpaceOverlay, def.Canvas.RenderMode)
	assert.Equal(t, ScaleModeScaleWithScreenSize, def.Canvas.ScaleMode)
	assert.Equal(t, layout.Vector2{X: 1080, Y: 1920}, def.Canvas.ReferenceResolution)
	assert.True(t, def.Canvas.Raycaster)

	hud, created := s.ResolveOrCreateContainer("HUD")
	require.True(t, created)
	assert.Equal(t, "HUD", hud.Name)

	again, created := s.ResolveOrCreateContainer("hud")
	assert.False(t, created)
	assert.Same(t, hud, again)

	// An empty name never reuses an existing canvas.
	second, created := s.ResolveOrCreateContainer("")
	assert.True(t, created)
	assert.NotSame(t, def, second)

	assert.Len(t, s.Canvases, 3)
}

func TestBuild(t *testing.T) {
	s := New()
	canvas, _ := s.ResolveOrCreateContainer("Main")

	placements := []Placement{
		{ID: "1:2", Image: "Assets/FigmaImages/1_2.png", Position: layout.Vector2{X: 50, Y: -50}, Size: layout.Vector2{X: 100, Y: 100}},
		{ID: "1:3", Image: "Assets/FigmaImages/1_3.png", Position: layout.Vector2{X: 225, Y: -225}, Size: layout.Vector2{X: 50, Y: 50}},
	}
	frame := s.Build(canvas, "", layout.Placement{Size: layout.Vector2{X: 300, Y: 300}}, placements)

	require.Len(t, canvas.Children, 1)
	assert.Same(t, frame, canvas.Children[0])
	assert.Equal(t, FrameObjectName, frame.Name)
	assert.Equal(t, KindFrame, frame.Kind)
	assert.Equal(t, layout.Vector2{}, frame.Position)
	assert.Equal(t, layout.Vector2{X: 300, Y: 300}, frame.Size)
	assert.Equal(t, layout.Vector2{X: 0.5, Y: 0.5}, frame.AnchorMin)

	require.Len(t, frame.Children, 2)
	assert.Equal(t, "1:2", frame.Children[0].Name)
	assert.Equal(t, "1:3", frame.Children[1].Name)
	assert.Equal(t, KindImage, frame.Children[1].Kind)
	assert.Equal(t, "Assets/FigmaImages/1_3.png", frame.Children[1].Image)
	assert.Equal(t, layout.Vector2{X: 225, Y: -225}, frame.Children[1].Position)
	assert.Equal(t, layout.Vector2{X: 0.5, Y: 0.5}, frame.Children[1].AnchorMax)

	var names []string
	s.Walk(func(obj *Object, depth int) {
		names = append(names, obj.Name)
	})
	assert.Equal(t, []string{"Main", FrameObjectName, "1:2", "1:3"}, names)
}

func TestManifestRoundTrip(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			s := New()
			s.RunID = "run-1"
			canvas, _ := s.ResolveOrCreateContainer("HUD")
			s.Build(canvas, "", layout.Placement{Size: layout.Vector2{X: 10, Y: 20}}, []Placement{
				{ID: "1:5", Image: "a.png", Position: layout.Vector2{X: 7.5, Y: -7.5}, Size: layout.Vector2{X: 5, Y: 5}},
			})

			var buf bytes.Buffer
			require.NoError(t, s.Encode(&buf, format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		})
	}
}

func TestManifestFiles(t *testing.T) {
	dir := t.TempDir()

	empty, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, empty.Canvases)

	s := New()
	s.ResolveOrCreateContainer("Overlay")
	path := filepath.Join(dir, "nested", "scene.json")
	require.NoError(t, s.SaveFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name": "Overlay"`)

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	canvas, ok := loaded.FindCanvas("OVERLAY")
	require.True(t, ok)
	assert.Equal(t, "Overlay", canvas.Name)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("scene.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("scene.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("scene"))
}

func TestUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New().Encode(&buf, "toml"))
	_, err := Decode(&buf, "toml")
	assert.Error(t, err)
}
