package figmaimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hellenic-development/figma-import/pkg/extractor"
	"github.com/hellenic-development/figma-import/pkg/figma"
	"github.com/hellenic-development/figma-import/pkg/formatter"
	"github.com/hellenic-development/figma-import/pkg/imager"
	"github.com/hellenic-development/figma-import/pkg/layout"
	"github.com/hellenic-development/figma-import/pkg/scene"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// DefaultRequestTimeout bounds each network call when Options.RequestTimeout is zero.
	DefaultRequestTimeout = 60 * time.Second
	// DefaultDocumentTTL is how long a client built by NewClient keeps a fetched document.
	DefaultDocumentTTL = 5 * time.Minute
)

// DocumentFetcher downloads and parses a Figma file. *figma.Client implements it.
type DocumentFetcher interface {
	GetFile(ctx context.Context, fileKey string) (*figma.FileResponse, error)
}

// Options configures an import.
type Options struct {
	AccessToken string
	FileKey     string // raw file key or a Figma file URL
	FrameID     string // "12:345" or "12-345"; empty = node-id of the FileKey URL
	CanvasName  string // existing canvas to import into, matched case-insensitively; empty = new canvas

	ImageFormat    string        // "png" (default), "jpg", "svg", "pdf"
	ImageScale     float64       // default 2
	ImageDir       string        // default imager.DefaultDir
	Concurrency    int           // parallel image downloads, default imager.DefaultConcurrency
	RateLimit      float64       // image downloads per second, 0 = unlimited
	RequestTimeout time.Duration // per network call, default DefaultRequestTimeout

	Logger Logger // nil = no logging

	// Client serves Documents, Exporter and Downloader when those are nil. Share one
	// Client between runs to fetch a file once for several frames. Nil = NewClient.
	Client *figma.Client

	// Collaborators. Nil values are replaced by Client, an imager.FileStore
	// rooted at ImageDir and a new scene.Scene respectively.
	Documents  DocumentFetcher
	Exporter   imager.Exporter
	Downloader imager.Downloader
	Store      imager.Store
	Scene      scene.Target
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the import output.
type Result struct {
	RunID     string
	FileKey   string
	FileName  string // Figma file name
	FrameID   string
	FrameSize layout.Vector2

	// Renderables lists the collected node IDs in stacking order.
	Renderables []string
	// Placements holds one record per renderable whose image was stored, in stacking order.
	Placements []scene.Placement
	// Misses lists renderables that were skipped because their image could not be resolved.
	Misses []imager.Miss

	Container        *scene.Object // canvas the frame was added to
	ContainerCreated bool
	Frame            *scene.Object

	// States lists the stages the import went through, ending in Done or Aborted.
	States []State

	Markdown string // formatted import report
}

// Reached reports whether the import entered the given stage.
func (r *Result) Reached(s State) bool {
	for _, st := range r.States {
		if st == s {
			return true
		}
	}
	return false
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// request is the validated, normalized form of Options.
type request struct {
	FileKey     string  `validate:"required,alphanum"`
	AccessToken string  `validate:"required"`
	FrameID     string  `validate:"required"`
	Format      string  `validate:"oneof=png jpg svg pdf"`
	Scale       float64 `validate:"gt=0,lte=4"`
	Concurrency int     `validate:"gte=0"`
	RateLimit   float64 `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Run executes the import pipeline: it fetches the document, locates the frame,
// collects its renderable nodes (the frame included), exports and stores their images in one batch
// and adds the frame with its placements to the scene target.
//
// On failure Run returns a *StageError together with the partial Result, whose States
// end with StateAborted. Nodes whose image could not be resolved do not fail the import;
// they are reported in Result.Misses.
func Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), States: []State{StateIdle}}

	enter := func(s State) {
		res.States = append(res.States, s)
	}
	abort := func(stage State, kind, cause error) (*Result, error) {
		enter(StateAborted)
		err := &StageError{Stage: stage, Kind: kind, Err: cause}
		opts.logError("%v", err)
		return res, err
	}

	// Validate input.
	enter(StateValidatingInput)
	req, err := normalize(&opts)
	if err != nil {
		return abort(StateValidatingInput, ErrInputValidation, err)
	}
	res.FileKey = req.FileKey
	res.FrameID = req.FrameID
	opts.logInfo("Import %s: file %s, frame %s", res.RunID, req.FileKey, req.FrameID)

	applyDefaults(&opts)

	// Fetch the document.
	enter(StateFetchingDocument)
	opts.logInfo("Fetching file data from Figma...")
	fileResp, err := opts.Documents.GetFile(ctx, req.FileKey)
	if err != nil {
		return abort(StateFetchingDocument, ErrTransport, fmt.Errorf("fetch file: %w", err))
	}
	res.FileName = fileResp.Name
	opts.logInfo("File: %s (%d nodes)", fileResp.Name, extractor.CountNodes(&fileResp.Document))

	// Locate the frame.
	enter(StateLocatingFrame)
	frame, ok := extractor.FindNode(&fileResp.Document, req.FrameID)
	if !ok {
		return abort(StateLocatingFrame, ErrNotFound, fmt.Errorf("node %s does not exist in file %s", req.FrameID, req.FileKey))
	}
	if !frame.HasBounds() {
		return abort(StateLocatingFrame, ErrNotFound, fmt.Errorf("node %s: %w", req.FrameID, ErrNoFrameBounds))
	}
	frameBox := *frame.AbsoluteBoundingBox
	framePlacement := layout.FramePlacement(frameBox)
	res.FrameSize = framePlacement.Size
	opts.logInfo("Frame: %s %q %gx%g", frame.Type, frame.Name, frameBox.Width, frameBox.Height)

	// Collect renderable layers.
	enter(StateCollectingRenderables)
	renderables := extractor.CollectRenderable(frame)
	res.Renderables = extractor.NodeIDs(renderables)
	if len(renderables) == 0 {
		return abort(StateCollectingRenderables, ErrEmptySelection, fmt.Errorf("frame %s has no exportable layers", req.FrameID))
	}
	opts.logInfo("Found %d renderable node(s)", len(renderables))

	// Export, download and store images.
	enter(StateResolvingImages)
	opts.logInfo("Exporting %d image(s) as %s@%gx...", len(renderables), req.Format, req.Scale)
	images, err := imager.Resolve(ctx, opts.Exporter, opts.Downloader, opts.Store, req.FileKey, renderables, imager.ExportConfig{
		Format:      req.Format,
		Scale:       req.Scale,
		Concurrency: req.Concurrency,
		RateLimit:   req.RateLimit,
	})
	if err != nil {
		return abort(StateResolvingImages, ErrTransport, fmt.Errorf("export images: %w", err))
	}
	res.Misses = images.Misses
	for _, miss := range images.Misses {
		opts.logWarn("Skipping %v", miss)
	}

	// Emit placements.
	enter(StateEmittingPlacements)
	res.Placements = make([]scene.Placement, 0, len(images.Images))
	for _, node := range renderables {
		ref, ok := images.Resolved(node.ID)
		if !ok {
			continue
		}

		p := layout.MapToTarget(*node.AbsoluteBoundingBox, frameBox)
		res.Placements = append(res.Placements, scene.Placement{
			ID:       node.ID,
			Image:    ref,
			Position: p.Position,
			Size:     p.Size,
		})
	}

	container, created := opts.Scene.ResolveOrCreateContainer(opts.CanvasName)
	switch {
	case !created:
		opts.logInfo("Using existing canvas: %s", container.Name)
	case opts.CanvasName != "":
		opts.logWarn("Canvas %q not found, created a new one", opts.CanvasName)
	default:
		opts.logInfo("Created canvas: %s", container.Name)
	}
	res.Container = container
	res.ContainerCreated = created
	res.Frame = opts.Scene.Build(container, scene.FrameObjectName, framePlacement, res.Placements)

	enter(StateDone)
	opts.logInfo("Placed %d of %d layer(s), %d skipped", len(res.Placements), len(renderables), len(res.Misses))

	res.Markdown = formatter.ToMarkdown(formatter.Report{
		RunID:       res.RunID,
		FileName:    res.FileName,
		FileKey:     res.FileKey,
		FrameID:     res.FrameID,
		FrameSize:   res.FrameSize,
		Canvas:      container.Name,
		Renderables: len(res.Renderables),
		Placements:  res.Placements,
		Misses:      res.Misses,
	})

	return res, nil
}

// normalize resolves the file key and frame ID, fills in export defaults and validates the result.
func normalize(opts *Options) (*request, error) {
	req := &request{
		AccessToken: strings.TrimSpace(opts.AccessToken),
		FrameID:     figma.NormalizeNodeID(opts.FrameID),
		Format:      strings.ToLower(strings.TrimSpace(opts.ImageFormat)),
		Scale:       opts.ImageScale,
		Concurrency: opts.Concurrency,
		RateLimit:   opts.RateLimit,
	}

	if strings.TrimSpace(opts.FileKey) != "" {
		key, err := figma.ResolveFileKey(opts.FileKey)
		if err != nil {
			return nil, fmt.Errorf("extract file key: %w", err)
		}
		req.FileKey = key

		if req.FrameID == "" && strings.Contains(opts.FileKey, "://") {
			ids, err := figma.ExtractNodeIDs(opts.FileKey)
			if err != nil {
				return nil, fmt.Errorf("extract node IDs from URL: %w", err)
			}
			if len(ids) > 0 {
				req.FrameID = ids[0]
			}
		}
	}

	if req.Format == "" {
		req.Format = imager.DefaultFormat
	}
	if req.Scale == 0 {
		req.Scale = imager.DefaultScale
	}

	if err := validate.Struct(req); err != nil {
		return nil, describeValidation(err)
	}

	return req, nil
}

// describeValidation turns validator errors into a readable message naming every bad field.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			continue
		}
		param := fe.Param()
		if param != "" {
			param = "=" + param
		}
		msgs = append(msgs, fmt.Sprintf("%s %v fails %s%s", fe.Field(), fe.Value(), fe.Tag(), param))
	}

	return errors.New(strings.Join(msgs, "; "))
}

func applyDefaults(opts *Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	if opts.Client == nil && (opts.Documents == nil || opts.Exporter == nil || opts.Downloader == nil) {
		opts.Client = NewClient(opts.AccessToken, opts.RequestTimeout)
	}

	if opts.Documents == nil {
		opts.Documents = opts.Client
	}
	if opts.Exporter == nil {
		opts.Exporter = opts.Client
	}
	if opts.Downloader == nil {
		opts.Downloader = opts.Client
	}
	if opts.Store == nil {
		opts.Store = imager.NewFileStore(opts.ImageDir)
	}
	if opts.Scene == nil {
		opts.Scene = scene.New()
	}
}

// NewClient returns a figma.Client with the given per-request timeout and a document
// cache of DefaultDocumentTTL. Pass it as Options.Client to every Run that imports from
// the same file.
func NewClient(accessToken string, requestTimeout time.Duration, opts ...figma.Option) *figma.Client {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	opts = append([]figma.Option{
		figma.WithRequestTimeout(requestTimeout),
		figma.WithDocumentCache(DefaultDocumentTTL),
	}, opts...)
	return figma.NewClient(strings.TrimSpace(accessToken), opts...)
}
