package domain

import (
	"fmt"
	"strings"
)

// DefaultBoardTitle names boards created without an explicit title.
const DefaultBoardTitle = "My Kanban Board"

// DefaultColumnTitles is the fixed column set of a fresh board.
var DefaultColumnTitles = []string{"To Do", "In Progress", "Done"}

// Board is the single ownership root: board -> columns -> tasks.
type Board struct {
	ID      string
	Title   string
	Columns []Column
}

// NewBoard constructs a board with one empty column per title, drawing every
// identifier from newID. With no titles, DefaultColumnTitles is used.
func NewBoard(newID func() string, title string, columnTitles ...string) Board {
	if strings.TrimSpace(title) == "" {
		title = DefaultBoardTitle
	}
	if len(columnTitles) == 0 {
		columnTitles = DefaultColumnTitles
	}
	board := Board{
		ID:      newID(),
		Title:   title,
		Columns: make([]Column, 0, len(columnTitles)),
	}
	for _, columnTitle := range columnTitles {
		board.Columns = append(board.Columns, NewColumn(newID(), columnTitle))
	}
	return board
}

// ColumnByID returns a pointer to the column with id.
func (b *Board) ColumnByID(id string) (*Column, bool) {
	for idx := range b.Columns {
		if b.Columns[idx].ID == id {
			return &b.Columns[idx], true
		}
	}
	return nil, false
}

// ColumnIndex returns the position of the column with id, or -1.
func (b Board) ColumnIndex(id string) int {
	for idx := range b.Columns {
		if b.Columns[idx].ID == id {
			return idx
		}
	}
	return -1
}

// FindTask scans columns in order and returns the first match.
func (b Board) FindTask(id string) (Task, bool) {
	for _, column := range b.Columns {
		if task, ok := column.Find(id); ok {
			return task, true
		}
	}
	return Task{}, false
}

// FindTaskMut scans columns in order and returns a pointer to the first match.
func (b *Board) FindTaskMut(id string) (*Task, bool) {
	for idx := range b.Columns {
		if task, ok := b.Columns[idx].FindMut(id); ok {
			return task, true
		}
	}
	return nil, false
}

// MoveTask relocates a task to the tail of another column. It returns false
// without mutating when source equals destination, the source column or the
// task in it is missing, or the destination column is missing. In the last
// case the task is put back at its original index in the source column.
func (b *Board) MoveTask(taskID, fromColumnID, toColumnID string) bool {
	if fromColumnID == toColumnID {
		return false
	}
	from, ok := b.ColumnByID(fromColumnID)
	if !ok {
		return false
	}
	idx := from.IndexOf(taskID)
	if idx < 0 {
		return false
	}
	task := from.removeAt(idx)

	to, ok := b.ColumnByID(toColumnID)
	if !ok {
		from.insertAt(idx, task)
		return false
	}
	to.Append(task)
	return true
}

// DeleteTask removes the first task with id; it reports whether one was removed.
func (b *Board) DeleteTask(id string) bool {
	for idx := range b.Columns {
		if _, ok := b.Columns[idx].RemoveByID(id); ok {
			return true
		}
	}
	return false
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	total := 0
	for _, column := range b.Columns {
		total += column.Len()
	}
	return total
}

// Clone returns a deep copy that shares no slices with b.
func (b Board) Clone() Board {
	out := Board{
		ID:      b.ID,
		Title:   b.Title,
		Columns: make([]Column, len(b.Columns)),
	}
	for idx, column := range b.Columns {
		tasks := make([]Task, len(column.Tasks))
		for taskIdx, task := range column.Tasks {
			if task.DueAt != nil {
				due := *task.DueAt
				task.DueAt = &due
			}
			tasks[taskIdx] = task
		}
		out.Columns[idx] = Column{ID: column.ID, Title: column.Title, Tasks: tasks}
	}
	return out
}

// Validate checks the structural invariants of a board that came from outside
// the process: non-empty identifiers, unique identifiers, non-blank task
// titles and defined priorities.
func (b Board) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("board: %w", ErrInvalidID)
	}
	if len(b.Columns) == 0 {
		return ErrNoColumns
	}
	seenColumns := map[string]struct{}{}
	seenTasks := map[string]struct{}{}
	for colIdx, column := range b.Columns {
		if strings.TrimSpace(column.ID) == "" {
			return fmt.Errorf("column[%d]: %w", colIdx, ErrInvalidID)
		}
		if _, ok := seenColumns[column.ID]; ok {
			return fmt.Errorf("column %q: %w", column.ID, ErrDuplicateID)
		}
		seenColumns[column.ID] = struct{}{}
		for taskIdx, task := range column.Tasks {
			if strings.TrimSpace(task.ID) == "" {
				return fmt.Errorf("column %q task[%d]: %w", column.ID, taskIdx, ErrInvalidID)
			}
			if _, ok := seenTasks[task.ID]; ok {
				return fmt.Errorf("task %q: %w", task.ID, ErrDuplicateID)
			}
			seenTasks[task.ID] = struct{}{}
			if strings.TrimSpace(task.Title) == "" {
				return fmt.Errorf("task %q: %w", task.ID, ErrInvalidTitle)
			}
			if !task.Priority.Valid() {
				return fmt.Errorf("task %q: %w", task.ID, ErrInvalidPriority)
			}
		}
	}
	return nil
}
