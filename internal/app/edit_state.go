package app

import (
	"strings"
	"unicode/utf8"

	"github.com/evanschultz/kanboard/internal/domain"
)

// EditField identifies the focused form field.
type EditField int

const (
	FieldTitle EditField = iota
	FieldDescription
	FieldPriority
)

// editFieldCount is the length of the focus cycle.
const editFieldCount = 3

// Next returns the following field, wrapping Priority back to Title.
func (f EditField) Next() EditField {
	return EditField((int(f) + 1) % editFieldCount)
}

// Prev returns the preceding field, wrapping Title back to Priority.
func (f EditField) Prev() EditField {
	return EditField((int(f) + editFieldCount - 1) % editFieldCount)
}

// String returns the field label.
func (f EditField) String() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldDescription:
		return "Description"
	case FieldPriority:
		return "Priority"
	default:
		return "?"
	}
}

// EditState stages add/edit form values until they are confirmed.
type EditState struct {
	Title       string
	Description string
	Priority    domain.Priority
	Focus       EditField
}

// DefaultEditState returns the reset form: empty text, default priority, focus on Title.
func DefaultEditState() EditState {
	return EditState{Priority: domain.DefaultPriority, Focus: FieldTitle}
}

// editStateFromTask pre-populates the form from an existing task.
func editStateFromTask(task domain.Task) EditState {
	return EditState{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Focus:       FieldTitle,
	}
}

// HasTitle reports whether the staged title is non-blank.
func (e EditState) HasTitle() bool {
	return strings.TrimSpace(e.Title) != ""
}

// AppendRune adds r to the focused text field; no-op on Priority.
func (e *EditState) AppendRune(r rune) {
	switch e.Focus {
	case FieldTitle:
		e.Title += string(r)
	case FieldDescription:
		e.Description += string(r)
	case FieldPriority:
	}
}

// Backspace drops the last rune of the focused text field; no-op on Priority.
func (e *EditState) Backspace() {
	switch e.Focus {
	case FieldTitle:
		e.Title = dropLastRune(e.Title)
	case FieldDescription:
		e.Description = dropLastRune(e.Description)
	case FieldPriority:
	}
}

// RaisePriority steps the staged priority up, clamped at Critical.
func (e *EditState) RaisePriority() {
	e.Priority = e.Priority.Raise()
}

// LowerPriority steps the staged priority down, clamped at Low.
func (e *EditState) LowerPriority() {
	e.Priority = e.Priority.Lower()
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
