package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hellenic-development/figma-import/pkg/imager"
	"github.com/hellenic-development/figma-import/pkg/layout"
	"github.com/hellenic-development/figma-import/pkg/scene"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report summarizes one import run.
type Report struct {
	RunID       string
	FileName    string
	FileKey     string
	FrameID     string
	FrameSize   layout.Vector2
	Canvas      string
	Renderables int
	Placements  []scene.Placement
	Misses      []imager.Miss
}

// ToMarkdown renders the import report as a markdown document: a summary, a table of the
// placed layers in stacking order (bottom first) and the list of skipped nodes.
func ToMarkdown(r Report) string {
	var sb strings.Builder

	title := r.FileName
	if title == "" {
		title = r.FileKey
	}
	sb.WriteString(fmt.Sprintf("# Figma Import - %s\n\n", escapeCell(title)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **File Key**: `%s`\n", r.FileKey))
	sb.WriteString(fmt.Sprintf("- **Frame**: `%s` (%gx%g)\n", r.FrameID, r.FrameSize.X, r.FrameSize.Y))
	if r.Canvas != "" {
		sb.WriteString(fmt.Sprintf("- **Canvas**: %s\n", escapeCell(r.Canvas)))
	}
	sb.WriteString(fmt.Sprintf("- **Renderable Nodes**: %d\n", r.Renderables))
	sb.WriteString(fmt.Sprintf("- **Placed**: %d\n", len(r.Placements)))
	sb.WriteString(fmt.Sprintf("- **Skipped**: %d\n", len(r.Misses)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("- **Run**: `%s`\n", r.RunID))
	}
	sb.WriteString("\n")

	if len(r.Placements) > 0 {
		sb.WriteString("## Placements\n\n")
		sb.WriteString("| # | Node | Image | Position | Size |\n")
		sb.WriteString("|---|------|-------|----------|------|\n")
		for i, p := range r.Placements {
			sb.WriteString(fmt.Sprintf("| %d | `%s` | `%s` | %s | %gx%g |\n",
				i+1, p.ID, p.Image, p.Position, p.Size.X, p.Size.Y))
		}
		sb.WriteString("\n")
	}

	if len(r.Misses) > 0 {
		sb.WriteString("## Skipped Nodes\n\n")
		for _, m := range r.Misses {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", m.NodeID, escapeCell(m.Err.Error())))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToHTML converts a markdown report to an HTML fragment. Tables are rendered with the
// GitHub flavored table extension.
func ToHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	return buf.String(), nil
}

// escapeCell keeps free text from breaking table rows.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
