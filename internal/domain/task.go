package domain

import (
	"strings"
	"time"
)

// Task is one unit of work owned by exactly one column.
type Task struct {
	ID          string
	Title       string
	Description string
	DueAt       *time.Time
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskInput holds the initial field values for NewTask.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	DueAt       *time.Time
}

// NewTask builds a task with both timestamps set to now. Title emptiness is
// checked by callers; an unset priority becomes DefaultPriority.
func NewTask(in TaskInput, now time.Time) Task {
	if !in.Priority.Valid() {
		in.Priority = DefaultPriority
	}
	ts := now.UTC()
	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: normalizeDescription(in.Description),
		DueAt:       normalizeDueAt(in.DueAt),
		Priority:    in.Priority,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// HasDescription reports whether the optional description is present.
func (t Task) HasDescription() bool {
	return t.Description != ""
}

// SetTitle overwrites the title.
func (t *Task) SetTitle(title string, now time.Time) {
	t.Title = title
	t.UpdatedAt = now.UTC()
}

// SetDescription overwrites the description; blank clears it.
func (t *Task) SetDescription(description string, now time.Time) {
	t.Description = normalizeDescription(description)
	t.UpdatedAt = now.UTC()
}

// SetPriority overwrites the priority.
func (t *Task) SetPriority(priority Priority, now time.Time) {
	t.Priority = priority
	t.UpdatedAt = now.UTC()
}

// SetDueAt overwrites the due date; nil clears it.
func (t *Task) SetDueAt(dueAt *time.Time, now time.Time) {
	t.DueAt = normalizeDueAt(dueAt)
	t.UpdatedAt = now.UTC()
}

func normalizeDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	return description
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC()
	return &ts
}
