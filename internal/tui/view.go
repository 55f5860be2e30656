package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// previewLines bounds the description preview under the board.
const previewLines = 6

var (
	accentColor = lipgloss.Color("62")
	movingColor = lipgloss.Color("214")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
)

// View renders the full screen from one application snapshot.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	state := m.app.State()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render("kanboard") + "  " + state.Board.Title
	header += statusStyle.Render("  [" + modeLabel(state.Mode) + "]")

	statusLine := statusStyle.Render(m.statusText(state))
	preview := m.renderPreview(state)

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys.helpFor(state)))

	reserved := lipgloss.Height(header) + 1 + lipgloss.Height(statusLine) + lipgloss.Height(helpLine)
	if preview != "" {
		reserved += lipgloss.Height(preview)
	}
	body := m.renderBoard(state, max(6, m.height-reserved))

	sections := []string{header, "", body, statusLine}
	if preview != "" {
		sections = append(sections, preview)
	}
	content := strings.Join(sections, "\n")
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := ""
	switch {
	case state.Mode.IsForm():
		overlay = renderForm(state, m.width-8)
	case m.help.ShowAll:
		overlay = m.renderHelpOverlay(m.width - 8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.AltScreen = true
	return v
}

// renderBoard lays the columns out side by side.
func (m Model) renderBoard(state app.State, height int) string {
	columns := state.Board.Columns
	if len(columns) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("(no columns)")
	}
	colWidth := columnWidthFor(m.width, len(columns))
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	movingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(movingColor).Bold(true)

	innerHeight := max(1, height-2)
	views := make([]string, 0, len(columns))
	for colIdx, column := range columns {
		isTarget := state.Mode == app.ModeMovingTask && colIdx == state.TargetColumn
		titleColor := color.Color(accentColor)
		if isTarget {
			titleColor = movingColor
		}
		heading := fmt.Sprintf("%s (%d)", column.Title, column.Len())
		if isTarget {
			heading += " ← move here"
		}
		headerLine := lipgloss.NewStyle().Bold(true).Foreground(titleColor).Render(truncate(heading, colWidth-2))

		lines := make([]string, 0, max(1, column.Len()))
		selectedLine := -1
		if column.Len() == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range column.Tasks {
			selected := colIdx == state.SelectedColumn && taskIdx == state.SelectedTask
			moving := task.ID != "" && task.ID == state.MovingTaskID
			prefix := "  "
			switch {
			case moving:
				prefix = "⇄ "
			case selected:
				prefix = "│ "
			}
			text := prefix + m.taskLine(task, max(1, colWidth-4))
			switch {
			case moving:
				text = movingStyle.Render(text)
			case selected:
				text = selectedStyle.Render(text)
			}
			if selected {
				selectedLine = len(lines)
			}
			lines = append(lines, text)
		}

		window := max(1, innerHeight-1)
		top := 0
		if selectedLine >= window {
			top = selectedLine - window + 1
		}
		top = clamp(top, 0, max(0, len(lines)-window))
		if len(lines) > window {
			lines = lines[top : top+window]
		}

		content := fitLines(strings.Join(append([]string{headerLine}, lines...), "\n"), innerHeight)
		style := base
		switch {
		case isTarget:
			style = style.BorderForeground(movingColor)
		case colIdx == state.SelectedColumn:
			style = style.BorderForeground(accentColor)
		}
		views = append(views, style.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// taskLine renders priority indicator, title and optional due date.
func (m Model) taskLine(task domain.Task, width int) string {
	due := ""
	if m.display.ShowDueDate {
		due = formatDue(task.DueAt)
	}
	indicator := priorityIndicator(task.Priority)
	title := truncate(task.Title, max(1, width-2-len([]rune(due))))
	return indicator + " " + title + due
}

// priorityIndicator returns a dot coloured by priority.
func priorityIndicator(p domain.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColor(p)).Render("●")
}

func priorityColor(p domain.Priority) color.Color {
	switch p {
	case domain.PriorityCritical:
		return lipgloss.Color("203")
	case domain.PriorityHigh:
		return lipgloss.Color("220")
	case domain.PriorityLow:
		return lipgloss.Color("78")
	default:
		return lipgloss.Color("75")
	}
}

// formatDue renders " [MM/DD]" in local time, or "" when unset.
func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return " [" + due.Local().Format("01/02") + "]"
}

// statusText combines the last outcome with move progress.
func (m Model) statusText(state app.State) string {
	if state.Mode == app.ModeMovingTask {
		title := ""
		if task, ok := state.Board.FindTask(state.MovingTaskID); ok {
			title = task.Title
		}
		target := ""
		if state.TargetColumn >= 0 && state.TargetColumn < len(state.Board.Columns) {
			target = state.Board.Columns[state.TargetColumn].Title
		}
		return fmt.Sprintf("moving %q → %s", truncate(title, 32), target)
	}
	return state.Status
}

// renderPreview shows the selected task's description as markdown.
func (m Model) renderPreview(state app.State) string {
	if !m.display.ShowDescriptionPreview || state.Mode != app.ModeNormal {
		return ""
	}
	if state.SelectedColumn >= len(state.Board.Columns) {
		return ""
	}
	column := state.Board.Columns[state.SelectedColumn]
	if state.SelectedTask >= column.Len() {
		return ""
	}
	task := column.Tasks[state.SelectedTask]
	if !task.HasDescription() {
		return ""
	}
	return m.markdown.preview(task.Description, max(0, m.width-4), previewLines)
}

// renderForm draws the add/edit modal with the focused field highlighted.
func renderForm(state app.State, maxWidth int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1)
	width := 56
	if maxWidth > 0 {
		width = clamp(maxWidth, 32, 72)
	}
	box = box.Width(width)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	focusedLabel := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	label := lipgloss.NewStyle().Foreground(mutedColor)
	placeholder := lipgloss.NewStyle().Foreground(dimColor).Italic(true)
	hint := lipgloss.NewStyle().Foreground(mutedColor)

	heading := "New Task"
	if state.Mode == app.ModeEditing {
		heading = "Edit Task"
	}
	edit := state.Edit
	fieldWidth := max(8, width-6)
	field := func(f app.EditField, value, empty string) []string {
		focused := edit.Focus == f
		name := label.Render("  " + f.String())
		if focused {
			name = focusedLabel.Render("› " + f.String())
		}
		var shown string
		switch {
		case f == app.FieldPriority:
			shown = value
		case focused:
			shown = tail(value, fieldWidth-1) + "▏"
		case value == "":
			shown = placeholder.Render(empty)
		default:
			shown = truncate(value, fieldWidth)
		}
		return []string{name, "  " + shown}
	}

	priority := edit.Priority.String()
	if edit.Focus == app.FieldPriority {
		priority = "◀ " + priority + " ▶"
	}
	lines := []string{titleStyle.Render(heading), ""}
	lines = append(lines, field(app.FieldTitle, edit.Title, "(required)")...)
	lines = append(lines, field(app.FieldDescription, edit.Description, "(optional, markdown)")...)
	lines = append(lines, field(app.FieldPriority, priorityIndicator(edit.Priority)+" "+priority, "")...)
	lines = append(lines, "", hint.Render("tab next field • enter save • esc cancel"))
	return box.Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay shows every normal-mode binding.
func (m Model) renderHelpOverlay(maxWidth int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1)
	if maxWidth > 0 {
		box = box.Width(clamp(maxWidth, 32, 96))
	}
	h := m.help
	h.ShowAll = true
	h.SetWidth(max(0, maxWidth-4))
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Keys")
	hint := lipgloss.NewStyle().Foreground(mutedColor).Render("? or esc to close")
	return box.Render(strings.Join([]string{title, h.View(m.keys), "", hint}, "\n"))
}

func modeLabel(mode app.InputMode) string {
	switch mode {
	case app.ModeAddingTask:
		return "add-task"
	case app.ModeEditing:
		return "edit-task"
	case app.ModeMovingTask:
		return "move-task"
	case app.ModeNormal:
		return "normal"
	default:
		return mode.String()
	}
}

// columnWidthFor splits the terminal width between n columns.
func columnWidthFor(boardWidth, n int) int {
	if n <= 0 {
		return 24
	}
	w := 28
	if boardWidth > 0 {
		// Per-column overhead: border (2), horizontal padding (2), margin (1).
		const colOverhead = 5
		if candidate := (boardWidth - n*colOverhead) / n; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 16, 48)
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a layered canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// tail keeps the last n runes so the cursor end of a long value stays visible.
func tail(s string, n int) string {
	rs := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(rs) <= n {
		return s
	}
	return "…" + string(rs[len(rs)-n+1:])
}
