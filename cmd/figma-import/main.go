package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	figmaimport "github.com/hellenic-development/figma-import"
	"github.com/hellenic-development/figma-import/pkg/figma"
	"github.com/hellenic-development/figma-import/pkg/formatter"
	"github.com/hellenic-development/figma-import/pkg/imager"
	"github.com/hellenic-development/figma-import/pkg/scene"

	"github.com/fatih/color"
	"github.com/shouni/go-utils/envutil"
	"github.com/spf13/cobra"
)

const version = figma.Version

var (
	fileKey        string
	accessToken    string
	frameIDs       []string
	canvasName     string
	imageDir       string
	imageFormat    string
	imageScale     float64
	concurrency    int
	rateLimit      float64
	requestTimeout time.Duration
	sceneFile      string
	reportFile     string
	logFormat      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "figma-import",
		Short: "Import a Figma frame as positioned image layers",
		Long:  "A tool to export the layers of a Figma frame as images and place them into a UI scene graph via the Figma API",
		RunE:  run,
		// Errors are printed by run itself.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&fileKey, "file", "f", envutil.GetEnv("FIGMA_FILE_KEY", ""), "Figma file key or file URL (env FIGMA_FILE_KEY)")
	rootCmd.Flags().StringVarP(&accessToken, "token", "t", envutil.GetEnv("FIGMA_TOKEN", ""), "Figma Personal Access Token (env FIGMA_TOKEN)")
	rootCmd.Flags().StringSliceVarP(&frameIDs, "frame", "n", splitList(envutil.GetEnv("FIGMA_FRAME_ID", "")), "Frame node ID, e.g. 12:345; repeat or comma-separate to import several frames (defaults to the node-id of the file URL)")
	rootCmd.Flags().StringVarP(&canvasName, "canvas", "c", "", "Existing canvas to import into (optional, case-insensitive)")
	rootCmd.Flags().StringVar(&imageDir, "image-dir", imager.DefaultDir, "Output directory for exported images")
	rootCmd.Flags().StringVar(&imageFormat, "image-format", imager.DefaultFormat, "Image format: png, jpg, svg, pdf")
	rootCmd.Flags().Float64Var(&imageScale, "scale", imager.DefaultScale, "Export scale factor applied to every layer (0.01-4)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", imager.DefaultConcurrency, "Number of parallel image downloads")
	rootCmd.Flags().Float64Var(&rateLimit, "rate", 0, "Maximum image downloads per second (0 = unlimited)")
	rootCmd.Flags().DurationVar(&requestTimeout, "timeout", figmaimport.DefaultRequestTimeout, "Timeout of each network request")
	rootCmd.Flags().StringVarP(&sceneFile, "scene", "s", "figma-scene.yaml", "Scene manifest to update (.yaml or .json)")
	rootCmd.Flags().StringVarP(&reportFile, "report", "r", "", "Write an import report (.md, or .html for HTML)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "color", "Log output: color or json")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-import version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	logger, closeLogger, err := newLogger(logFormat)
	if err != nil {
		return err
	}
	defer closeLogger()

	if logFormat != logFormatJSON {
		cyan.Println("\n🎨 Figma Frame Importer")
		cyan.Println("========================")
		cyan.Println()
	}

	target, err := scene.LoadFile(sceneFile)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", sceneFile, err)
	}

	frames := frameIDs
	if len(frames) == 0 {
		frames = []string{""} // node-id of the file URL
	}

	// One client for every frame, so the file is fetched once.
	client := figmaimport.NewClient(accessToken, requestTimeout)

	results := make([]*figmaimport.Result, 0, len(frames))
	reports := make([]string, 0, len(frames))
	for _, frameID := range frames {
		result, err := figmaimport.Run(cmd.Context(), figmaimport.Options{
			AccessToken:    accessToken,
			FileKey:        fileKey,
			FrameID:        frameID,
			CanvasName:     canvasName,
			ImageFormat:    imageFormat,
			ImageScale:     imageScale,
			ImageDir:       imageDir,
			Concurrency:    concurrency,
			RateLimit:      rateLimit,
			RequestTimeout: requestTimeout,
			Logger:         logger,
			Client:         client,
			Scene:          target,
		})
		if err != nil {
			return err
		}

		target.RunID = result.RunID
		results = append(results, result)
		reports = append(reports, result.Markdown)
	}

	if err := target.SaveFile(sceneFile); err != nil {
		return err
	}

	if reportFile != "" {
		if err := writeReport(reportFile, strings.Join(reports, "\n")); err != nil {
			return err
		}
	}

	objects := 0
	target.Walk(func(*scene.Object, int) { objects++ })

	cyan.Println("\n📊 Import Summary:")
	for _, result := range results {
		fmt.Printf("  • Frame: %s (%gx%g) on %s\n", result.FrameID, result.FrameSize.X, result.FrameSize.Y, result.Container.Name)
		fmt.Printf("    Renderable Layers: %d, Placed: %d", len(result.Renderables), len(result.Placements))
		if len(result.Misses) > 0 {
			fmt.Printf(", Skipped: %d", len(result.Misses))
		}
		fmt.Println()
	}
	fmt.Printf("  • Scene Objects: %d\n", objects)

	green.Printf("\n✨ Successfully imported %d frame(s) into %s\n\n", len(results), sceneFile)
	return nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// writeReport writes the markdown report, converted to HTML when path ends in .html or .htm.
func writeReport(path, markdown string) error {
	content := markdown

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		html, err := formatter.ToHTML(markdown)
		if err != nil {
			return err
		}
		content = html
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
