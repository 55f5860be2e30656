package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evanschultz/kanboard/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// maxIDAttempts bounds retries when the generator yields a blank or colliding id.
const maxIDAttempts = 8

// Status messages surfaced on the status line.
const (
	StatusReady       = "Ready"
	StatusTaskAdded   = "Task added"
	StatusTaskUpdated = "Task updated"
	StatusTaskDeleted = "Task deleted"
	StatusCancelled   = "Cancelled"
	StatusNotMoved    = "Task not moved"
	StatusNoTask      = "No task selected"
)

// Config holds the collaborators injected into an Application.
type Config struct {
	IDGen IDGenerator
	Clock Clock
}

// Application owns the board, cursor state, form state and input mode. Every
// mutation goes through its methods, which re-validate the cursor afterwards.
type Application struct {
	board domain.Board
	idGen IDGenerator
	clock Clock

	mode           InputMode
	selectedColumn int
	selectedTask   int
	targetColumn   int

	edit          EditState
	editingTaskID string

	movingTaskID     string
	moveFromColumnID string

	status string
	quit   bool
}

// State is a read-only copy of the application for rendering.
type State struct {
	Board          domain.Board
	Mode           InputMode
	SelectedColumn int
	SelectedTask   int
	TargetColumn   int
	Edit           EditState
	MovingTaskID   string
	Status         string
}

// New constructs an Application around board in Normal mode.
func New(board domain.Board, cfg Config) *Application {
	if cfg.IDGen == nil {
		cfg.IDGen = uuid.NewString
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	a := &Application{
		board:  board,
		idGen:  cfg.IDGen,
		clock:  cfg.Clock,
		mode:   ModeNormal,
		edit:   DefaultEditState(),
		status: StatusReady,
	}
	a.ValidateSelection()
	return a
}

// Handle applies one intent. Quit is honoured in every mode; anything else is
// dispatched per mode and ignored when it has no meaning there.
func (a *Application) Handle(in Intent) {
	if in.Kind == IntentQuit {
		a.quit = true
		return
	}
	switch a.mode {
	case ModeNormal:
		a.handleNormal(in)
	case ModeAddingTask, ModeEditing:
		a.handleForm(in)
	case ModeMovingTask:
		a.handleMoving(in)
	}
}

func (a *Application) handleNormal(in Intent) {
	switch in.Kind {
	case IntentLeft:
		a.MoveSelectionLeft()
	case IntentRight:
		a.MoveSelectionRight()
	case IntentUp:
		a.MoveSelectionUp()
	case IntentDown:
		a.MoveSelectionDown()
	case IntentNewTask:
		a.StartAddingTask()
	case IntentEditSelected:
		a.StartEditingTask()
	case IntentDeleteSelected:
		a.DeleteSelectedTask()
	case IntentBeginMove:
		a.StartMovingTask()
	case IntentMoveToPrevColumn:
		a.MoveTaskToPrevColumn()
	}
}

func (a *Application) handleForm(in Intent) {
	switch in.Kind {
	case IntentConfirm:
		a.ConfirmForm()
	case IntentCancel:
		a.CancelForm()
	case IntentNextField:
		a.edit.Focus = a.edit.Focus.Next()
	case IntentPrevField:
		a.edit.Focus = a.edit.Focus.Prev()
	case IntentRaisePriority:
		a.edit.RaisePriority()
	case IntentLowerPriority:
		a.edit.LowerPriority()
	case IntentAppendChar:
		a.edit.AppendRune(in.Char)
	case IntentBackspace:
		a.edit.Backspace()
	}
}

func (a *Application) handleMoving(in Intent) {
	switch in.Kind {
	case IntentLeft:
		a.MoveTargetLeft()
	case IntentRight:
		a.MoveTargetRight()
	case IntentConfirm, IntentBeginMove:
		a.ConfirmMoveTask()
	case IntentCancel:
		a.CancelMoveTask()
	}
}

// MoveSelectionLeft selects the previous column and its first task.
func (a *Application) MoveSelectionLeft() {
	if a.selectedColumn > 0 {
		a.selectedColumn--
		a.selectedTask = 0
	}
	a.ValidateSelection()
}

// MoveSelectionRight selects the next column and its first task.
func (a *Application) MoveSelectionRight() {
	if a.selectedColumn < len(a.board.Columns)-1 {
		a.selectedColumn++
		a.selectedTask = 0
	}
	a.ValidateSelection()
}

// MoveSelectionUp selects the previous task in the current column.
func (a *Application) MoveSelectionUp() {
	if a.selectedTask > 0 {
		a.selectedTask--
	}
	a.ValidateSelection()
}

// MoveSelectionDown selects the next task in the current column.
func (a *Application) MoveSelectionDown() {
	if col, ok := a.currentColumn(); ok && a.selectedTask < col.Len()-1 {
		a.selectedTask++
	}
	a.ValidateSelection()
}

// StartAddingTask opens an empty form.
func (a *Application) StartAddingTask() {
	if a.mode != ModeNormal || len(a.board.Columns) == 0 {
		return
	}
	a.edit = DefaultEditState()
	a.editingTaskID = ""
	a.mode = ModeAddingTask
	a.status = "Adding task"
}

// StartEditingTask opens the form pre-populated from the selected task.
func (a *Application) StartEditingTask() {
	if a.mode != ModeNormal {
		return
	}
	task, ok := a.SelectedTask()
	if !ok {
		a.status = StatusNoTask
		return
	}
	a.edit = editStateFromTask(task)
	a.editingTaskID = task.ID
	a.mode = ModeEditing
	a.status = "Editing task"
}

// ConfirmForm commits the form. A blank title leaves everything unchanged.
func (a *Application) ConfirmForm() {
	if !a.mode.IsForm() || !a.edit.HasTitle() {
		return
	}
	switch a.mode {
	case ModeAddingTask:
		if !a.commitNewTask() {
			return
		}
	case ModeEditing:
		a.commitEdit()
	}
	a.edit = DefaultEditState()
	a.editingTaskID = ""
	a.mode = ModeNormal
	a.ValidateSelection()
}

// commitNewTask reports false when nothing was added; the form stays open so
// the staged values survive.
func (a *Application) commitNewTask() bool {
	col, ok := a.currentColumnMut()
	if !ok {
		a.status = "No column selected"
		return false
	}
	id, err := a.allocateTaskID()
	if err != nil {
		a.status = err.Error()
		return false
	}
	task := domain.NewTask(domain.TaskInput{
		ID:          id,
		Title:       strings.TrimSpace(a.edit.Title),
		Description: a.edit.Description,
		Priority:    a.edit.Priority,
	}, a.clock())
	col.Append(task)
	a.selectedTask = col.Len() - 1
	a.status = StatusTaskAdded
	return true
}

func (a *Application) commitEdit() {
	task, ok := a.board.FindTaskMut(a.editingTaskID)
	if !ok {
		a.status = "Task no longer exists"
		return
	}
	now := a.clock()
	task.SetTitle(strings.TrimSpace(a.edit.Title), now)
	task.SetDescription(a.edit.Description, now)
	task.SetPriority(a.edit.Priority, now)
	a.status = StatusTaskUpdated
}

// CancelForm discards the form without touching the board.
func (a *Application) CancelForm() {
	if !a.mode.IsForm() {
		return
	}
	a.edit = DefaultEditState()
	a.editingTaskID = ""
	a.mode = ModeNormal
	a.status = StatusCancelled
}

// DeleteSelectedTask removes the selected task, if any.
func (a *Application) DeleteSelectedTask() {
	task, ok := a.SelectedTask()
	if !ok {
		return
	}
	if a.board.DeleteTask(task.ID) {
		a.status = StatusTaskDeleted
	}
	a.ValidateSelection()
}

// MoveTaskToPrevColumn moves the selected task to the tail of the column on
// its left.
func (a *Application) MoveTaskToPrevColumn() {
	if a.selectedColumn == 0 {
		return
	}
	task, ok := a.SelectedTask()
	if !ok {
		return
	}
	from := a.board.Columns[a.selectedColumn]
	to := a.board.Columns[a.selectedColumn-1]
	if a.board.MoveTask(task.ID, from.ID, to.ID) {
		a.status = fmt.Sprintf("Task moved to %s", to.Title)
	} else {
		a.status = StatusNotMoved
	}
	a.ValidateSelection()
}

// StartMovingTask enters MovingTask for the selected task with the target on
// the current column.
func (a *Application) StartMovingTask() {
	if a.mode != ModeNormal {
		return
	}
	task, ok := a.SelectedTask()
	if !ok {
		a.status = StatusNoTask
		return
	}
	a.movingTaskID = task.ID
	a.moveFromColumnID = a.board.Columns[a.selectedColumn].ID
	a.targetColumn = a.selectedColumn
	a.mode = ModeMovingTask
	a.status = "Choose a destination column"
}

// MoveTargetLeft steps the destination one column left, clamped.
func (a *Application) MoveTargetLeft() {
	if a.mode == ModeMovingTask && a.targetColumn > 0 {
		a.targetColumn--
	}
}

// MoveTargetRight steps the destination one column right, clamped.
func (a *Application) MoveTargetRight() {
	if a.mode == ModeMovingTask && a.targetColumn < len(a.board.Columns)-1 {
		a.targetColumn++
	}
}

// ConfirmMoveTask moves the task from the column it started in to the target
// column and returns to Normal whether or not the move succeeded.
func (a *Application) ConfirmMoveTask() {
	if a.mode != ModeMovingTask {
		return
	}
	a.status = StatusNotMoved
	if a.targetColumn >= 0 && a.targetColumn < len(a.board.Columns) {
		to := a.board.Columns[a.targetColumn]
		if a.board.MoveTask(a.movingTaskID, a.moveFromColumnID, to.ID) {
			a.status = fmt.Sprintf("Task moved to %s", to.Title)
		}
	}
	a.clearMove()
	a.ValidateSelection()
}

// CancelMoveTask leaves MovingTask without mutating the board.
func (a *Application) CancelMoveTask() {
	if a.mode != ModeMovingTask {
		return
	}
	a.clearMove()
	a.status = StatusCancelled
	a.ValidateSelection()
}

func (a *Application) clearMove() {
	a.movingTaskID = ""
	a.moveFromColumnID = ""
	a.mode = ModeNormal
}

// ValidateSelection clamps every cursor into the bounds of the current board.
func (a *Application) ValidateSelection() {
	columns := len(a.board.Columns)
	if columns == 0 {
		a.selectedColumn, a.selectedTask, a.targetColumn = 0, 0, 0
		return
	}
	a.selectedColumn = clampIndex(a.selectedColumn, columns)
	a.targetColumn = clampIndex(a.targetColumn, columns)
	a.selectedTask = clampIndex(a.selectedTask, a.board.Columns[a.selectedColumn].Len())
}

// clampIndex returns idx limited to [0, n-1], or 0 when n is zero.
func clampIndex(idx, n int) int {
	if n <= 0 || idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// ReplaceBoard swaps in a loaded board, returns to Normal mode and
// re-validates the cursor against the new column and task counts.
func (a *Application) ReplaceBoard(board domain.Board) {
	a.board = board
	a.mode = ModeNormal
	a.edit = DefaultEditState()
	a.editingTaskID = ""
	a.movingTaskID = ""
	a.moveFromColumnID = ""
	a.ValidateSelection()
}

// Tick is the periodic scheduling hook. It changes nothing.
func (a *Application) Tick() {}

// AddTask appends a task built from in to the column at columnIdx. It is the
// non-interactive counterpart of the add form and the only path that sets a
// due date.
func (a *Application) AddTask(columnIdx int, in domain.TaskInput) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Task{}, ErrBlankTitle
	}
	if columnIdx < 0 || columnIdx >= len(a.board.Columns) {
		return domain.Task{}, fmt.Errorf("column %d: %w", columnIdx, ErrNoColumn)
	}
	id, err := a.allocateTaskID()
	if err != nil {
		return domain.Task{}, err
	}
	in.ID = id
	task := domain.NewTask(in, a.clock())
	a.board.Columns[columnIdx].Append(task)
	a.status = StatusTaskAdded
	a.ValidateSelection()
	return task, nil
}

func (a *Application) allocateTaskID() (string, error) {
	for range maxIDAttempts {
		id := strings.TrimSpace(a.idGen())
		if id == "" {
			continue
		}
		if _, exists := a.board.FindTask(id); exists {
			continue
		}
		return id, nil
	}
	return "", ErrIDExhausted
}

// State returns a deep copy of everything rendering needs.
func (a *Application) State() State {
	return State{
		Board:          a.board.Clone(),
		Mode:           a.mode,
		SelectedColumn: a.selectedColumn,
		SelectedTask:   a.selectedTask,
		TargetColumn:   a.targetColumn,
		Edit:           a.edit,
		MovingTaskID:   a.movingTaskID,
		Status:         a.status,
	}
}

// Board returns a deep copy of the board for persistence.
func (a *Application) Board() domain.Board {
	return a.board.Clone()
}

// Mode returns the active input mode.
func (a *Application) Mode() InputMode {
	return a.mode
}

// SelectedTask returns the task under the cursor.
func (a *Application) SelectedTask() (domain.Task, bool) {
	col, ok := a.currentColumn()
	if !ok || a.selectedTask < 0 || a.selectedTask >= col.Len() {
		return domain.Task{}, false
	}
	return col.Tasks[a.selectedTask], true
}

// YankSelected returns the selected task so callers can copy it elsewhere.
func (a *Application) YankSelected() (domain.Task, bool) {
	task, ok := a.SelectedTask()
	if !ok {
		a.status = StatusNoTask
		return domain.Task{}, false
	}
	return task, true
}

// Status returns the last operation outcome.
func (a *Application) Status() string {
	return a.status
}

// SetStatus overrides the status line.
func (a *Application) SetStatus(status string) {
	a.status = status
}

// ShouldQuit reports whether a quit intent was received.
func (a *Application) ShouldQuit() bool {
	return a.quit
}

func (a *Application) currentColumn() (domain.Column, bool) {
	if a.selectedColumn < 0 || a.selectedColumn >= len(a.board.Columns) {
		return domain.Column{}, false
	}
	return a.board.Columns[a.selectedColumn], true
}

func (a *Application) currentColumnMut() (*domain.Column, bool) {
	if a.selectedColumn < 0 || a.selectedColumn >= len(a.board.Columns) {
		return nil, false
	}
	return &a.board.Columns[a.selectedColumn], true
}
