package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minPreviewWidth keeps glamour from wrapping into a single column.
const minPreviewWidth = 24

// markdownRenderer renders task descriptions with glamour. It keeps the last
// renderer per wrap width and the last output per input, since View runs on
// every tick.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer

	lastInput  string
	lastWidth  int
	lastOutput string
}

// render returns markdown styled for the terminal, falling back to the raw
// text when glamour fails.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	width = max(width, minPreviewWidth)
	if markdown == r.lastInput && width == r.lastWidth {
		return r.lastOutput
	}

	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = width
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	out := strings.Trim(rendered, "\n")
	r.lastInput, r.lastWidth, r.lastOutput = markdown, width, out
	return out
}

// preview renders markdown and keeps at most maxLines lines.
func (r *markdownRenderer) preview(markdown string, width, maxLines int) string {
	out := r.render(markdown, width)
	if out == "" || maxLines <= 0 {
		return ""
	}
	lines := strings.Split(out, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "…")
	}
	return strings.Join(lines, "\n")
}
