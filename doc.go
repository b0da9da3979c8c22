// Package figmaimport imports a Figma frame into a UI scene graph via the Figma API.
//
// The pipeline fetches the file, locates the frame by node ID, collects the frame's
// renderable layers (everything except GROUP, BOOLEAN_OPERATION and SLICE nodes, as long
// as it has an absolute bounding box), exports all of them as images in a single batched
// render request, stores the images locally and places one image object per layer
// inside a frame container on a canvas.
//
// The CLI lives in cmd/figma-import; this root package exposes the same pipeline as a Go
// API so that callers can embed the import in their own tools.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmaimport:
//
//	import "github.com/hellenic-development/figma-import" // package figmaimport
//
// # Quick start
//
//	target := scene.New()
//	result, err := figmaimport.Run(ctx, figmaimport.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileKey:     "https://www.figma.com/design/ABC123/My-Design?node-id=12-345",
//	    ImageDir:    "Assets/FigmaImages",
//	    Scene:       target,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	target.SaveFile("scene.yaml")
//
// # Coordinates
//
// Figma bounding boxes are absolute, top-left anchored and Y-down. Placements are
// relative to the frame, anchored at the center and Y-up: a layer's position is the
// offset of its center from the frame's center. See package layout.
//
// # Errors
//
// Run aborts with a *StageError whose kind is one of [ErrInputValidation],
// [ErrTransport], [ErrNotFound] or [ErrEmptySelection]. Layers whose image cannot be
// exported or downloaded are skipped and listed in [Result.Misses].
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. A *zap.SugaredLogger satisfies
// the interface as is.
package figmaimport
