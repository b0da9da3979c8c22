package imager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hellenic-development/figma-import/pkg/figma"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Default export settings.
const (
	DefaultFormat      = "png"
	DefaultScale       = 2.0
	DefaultConcurrency = 4
)

// ErrNoImageURL is recorded for nodes the render API returned no URL for.
var ErrNoImageURL = errors.New("no image URL returned")

// Exporter requests rendered images for a batch of nodes.
// *figma.Client implements it.
type Exporter interface {
	GetImages(ctx context.Context, fileKey string, ids []string, format string, scale float64) (*figma.ImagesResponse, error)
}

// Downloader fetches the bytes behind an image URL.
// *figma.Client implements it.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Store persists image bytes under a filesystem-safe key and returns a local reference
// to the stored image.
type Store interface {
	Save(key string, data []byte) (string, error)
}

// ExportConfig holds configuration for image export.
type ExportConfig struct {
	Format      string  // "png", "jpg", "svg", "pdf"
	Scale       float64 // applied uniformly to every node of the batch
	Concurrency int     // parallel downloads, <= 0 means DefaultConcurrency
	RateLimit   float64 // downloads per second, <= 0 means unlimited
}

func (c ExportConfig) withDefaults() ExportConfig {
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Scale <= 0 {
		c.Scale = DefaultScale
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}

// Miss describes a node whose image could not be resolved.
type Miss struct {
	NodeID string
	Err    error
}

func (m Miss) Error() string {
	return fmt.Sprintf("node %s: %v", m.NodeID, m.Err)
}

func (m Miss) Unwrap() error {
	return m.Err
}

// ExportResult holds the results of an image export operation.
type ExportResult struct {
	// Images maps node ID to the local reference returned by the Store.
	Images map[string]string
	// Misses lists, in node order, the nodes that were not resolved.
	Misses []Miss
}

// Resolved reports whether an image was stored for the node.
func (r *ExportResult) Resolved(nodeID string) (string, bool) {
	ref, ok := r.Images[nodeID]
	return ref, ok
}

// Resolve exports every node in a single render request, downloads each returned
// image and saves it through store under FileName(id, format).
//
// A failed render request is returned as an error. Missing URLs and failed downloads or
// writes are per-node misses: they never abort the other nodes. Downloads run concurrently,
// bounded by config.Concurrency, and Misses keeps the order of nodes.
func Resolve(ctx context.Context, exporter Exporter, downloader Downloader, store Store, fileKey string, nodes []*figma.Node, config ExportConfig) (*ExportResult, error) {
	config = config.withDefaults()

	result := &ExportResult{Images: make(map[string]string, len(nodes))}
	if len(nodes) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}

	imgResp, err := exporter.GetImages(ctx, fileKey, ids, config.Format, config.Scale)
	if err != nil {
		return nil, fmt.Errorf("failed to get images from Figma API: %w", err)
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	type outcome struct {
		ref string
		err error
	}
	outcomes := make([]outcome, len(ids))

	// Every goroutine returns nil: a failed node must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(config.Concurrency)

	for i, id := range ids {
		imageURL := imgResp.Images[id]
		if imageURL == "" {
			outcomes[i].err = ErrNoImageURL
			continue
		}

		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						err = ctxErr
					}
					outcomes[i].err = err
					return nil
				}
			}

			data, err := downloader.Download(ctx, imageURL)
			if err != nil {
				outcomes[i].err = fmt.Errorf("failed to download image: %w", err)
				return nil
			}

			ref, err := store.Save(FileName(id, config.Format), data)
			if err != nil {
				outcomes[i].err = fmt.Errorf("failed to store image: %w", err)
				return nil
			}

			outcomes[i].ref = ref
			return nil
		})
	}

	g.Wait()

	// Cancellation only fails the batch if it cost some node its image.
	if err := ctx.Err(); err != nil {
		for _, o := range outcomes {
			if errors.Is(o.err, err) {
				return nil, err
			}
		}
	}

	for i, id := range ids {
		if outcomes[i].err != nil {
			result.Misses = append(result.Misses, Miss{NodeID: id, Err: outcomes[i].err})
			continue
		}
		result.Images[id] = outcomes[i].ref
	}

	return result, nil
}

// SafeKey turns a node ID into a file name stem. Node IDs use ':' as a separator,
// which is not valid in file names on every platform, so it becomes '_'.
func SafeKey(nodeID string) string {
	return strings.NewReplacer(":", "_", "/", "_", `\`, "_").Replace(nodeID)
}

// FileName returns the storage key of a node's image, e.g. "12_345.png".
func FileName(nodeID, format string) string {
	return SafeKey(nodeID) + "." + strings.ToLower(format)
}
