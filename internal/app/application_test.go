package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/kanboard/internal/domain"
)

// sequentialIDs returns a generator of deterministic UUID-shaped ids.
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
}

var fixedNow = time.Date(2026, 2, 21, 9, 30, 0, 123456789, time.UTC)

func fixedClock(now time.Time) Clock {
	return func() time.Time { return now }
}

func newTestApp(t *testing.T) (*Application, time.Time) {
	t.Helper()
	ids := sequentialIDs()
	board := domain.NewBoard(ids, "")
	return New(board, Config{IDGen: ids, Clock: fixedClock(fixedNow)}), fixedNow
}

func typeText(a *Application, text string) {
	for _, r := range text {
		a.Handle(Char(r))
	}
}

func addTask(t *testing.T, a *Application, title string) domain.Task {
	t.Helper()
	a.Handle(Do(IntentNewTask))
	typeText(a, title)
	a.Handle(Do(IntentConfirm))
	if a.Mode() != ModeNormal {
		t.Fatalf("mode after add = %s, want normal", a.Mode())
	}
	task, ok := a.SelectedTask()
	if !ok {
		t.Fatalf("expected selected task after adding %q", title)
	}
	return task
}

// assertInvariants checks identifier uniqueness and cursor bounds.
func assertInvariants(t *testing.T, a *Application) {
	t.Helper()
	state := a.State()
	seen := map[string]struct{}{}
	for _, column := range state.Board.Columns {
		for _, task := range column.Tasks {
			if _, ok := seen[task.ID]; ok {
				t.Fatalf("task %q appears more than once", task.ID)
			}
			seen[task.ID] = struct{}{}
		}
	}
	if len(state.Board.Columns) == 0 {
		return
	}
	if state.SelectedColumn < 0 || state.SelectedColumn >= len(state.Board.Columns) {
		t.Fatalf("selected column %d out of range", state.SelectedColumn)
	}
	if state.TargetColumn < 0 || state.TargetColumn >= len(state.Board.Columns) {
		t.Fatalf("target column %d out of range", state.TargetColumn)
	}
	tasks := state.Board.Columns[state.SelectedColumn].Len()
	if tasks > 0 && (state.SelectedTask < 0 || state.SelectedTask >= tasks) {
		t.Fatalf("selected task %d out of range for %d tasks", state.SelectedTask, tasks)
	}
	if tasks == 0 && state.SelectedTask != 0 {
		t.Fatalf("selected task = %d on empty column, want 0", state.SelectedTask)
	}
}

// TestNewBoardDeleteOnEmptyIsNoop verifies behavior for the covered scenario.
func TestNewBoardDeleteOnEmptyIsNoop(t *testing.T) {
	a, _ := newTestApp(t)
	state := a.State()
	want := []string{"To Do", "In Progress", "Done"}
	if len(state.Board.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(state.Board.Columns))
	}
	for idx, title := range want {
		if got := state.Board.Columns[idx].Title; got != title {
			t.Fatalf("column %d title = %q, want %q", idx, got, title)
		}
	}
	before := a.Board()
	a.Handle(Do(IntentDeleteSelected))
	if a.Board().TaskCount() != before.TaskCount() {
		t.Fatal("delete on empty board changed the task count")
	}
	if a.Status() != StatusReady {
		t.Fatalf("status = %q, want %q", a.Status(), StatusReady)
	}
	assertInvariants(t, a)
}

// TestAddTaskWithDefaults verifies behavior for the covered scenario.
func TestAddTaskWithDefaults(t *testing.T) {
	a, now := newTestApp(t)
	existing := addTask(t, a, "Existing")
	task := addTask(t, a, "Buy milk")

	col := a.Board().Columns[0]
	if col.Len() != 2 {
		t.Fatalf("column 0 length = %d, want 2", col.Len())
	}
	if task.ID == "" || task.ID == existing.ID {
		t.Fatalf("expected unique id, got %q (existing %q)", task.ID, existing.ID)
	}
	if task.Title != "Buy milk" || task.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected task %#v", task)
	}
	if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", task.CreatedAt, task.UpdatedAt, now)
	}
	if a.Status() != StatusTaskAdded {
		t.Fatalf("status = %q, want %q", a.Status(), StatusTaskAdded)
	}
}

// TestMoveTaskToLastColumn verifies behavior for the covered scenario.
func TestMoveTaskToLastColumn(t *testing.T) {
	a, _ := newTestApp(t)
	task := addTask(t, a, "Ship it")

	a.Handle(Do(IntentBeginMove))
	if a.Mode() != ModeMovingTask {
		t.Fatalf("mode = %s, want moving", a.Mode())
	}
	if got := a.State().MovingTaskID; got != task.ID {
		t.Fatalf("moving task id = %q, want %q", got, task.ID)
	}
	a.Handle(Do(IntentRight))
	a.Handle(Do(IntentRight))
	a.Handle(Do(IntentRight))
	if got := a.State().TargetColumn; got != 2 {
		t.Fatalf("target column = %d, want 2 (clamped)", got)
	}
	a.Handle(Do(IntentConfirm))

	state := a.State()
	if state.Mode != ModeNormal || state.MovingTaskID != "" {
		t.Fatalf("expected normal mode with cleared move, got %s %q", state.Mode, state.MovingTaskID)
	}
	if state.Board.Columns[0].Len() != 0 {
		t.Fatalf("expected column 0 empty, got %d tasks", state.Board.Columns[0].Len())
	}
	done := state.Board.Columns[2]
	if done.Len() != 1 || done.Tasks[done.Len()-1].ID != task.ID {
		t.Fatalf("expected task at tail of Done, got %#v", done.Tasks)
	}
	if state.SelectedColumn != 0 || state.SelectedTask != 0 {
		t.Fatalf("selection = (%d,%d), want (0,0)", state.SelectedColumn, state.SelectedTask)
	}
	if state.Status != "Task moved to Done" {
		t.Fatalf("status = %q", state.Status)
	}
}

// TestMoveToSameColumnKeepsTask verifies behavior for the covered scenario.
func TestMoveToSameColumnKeepsTask(t *testing.T) {
	a, _ := newTestApp(t)
	task := addTask(t, a, "Stay")
	a.Handle(Do(IntentBeginMove))
	a.Handle(Do(IntentConfirm))
	if a.Mode() != ModeNormal {
		t.Fatalf("mode = %s, want normal", a.Mode())
	}
	if _, ok := a.Board().Columns[0].Find(task.ID); !ok {
		t.Fatal("expected task to stay in its column")
	}
	if a.Status() != StatusNotMoved {
		t.Fatalf("status = %q, want %q", a.Status(), StatusNotMoved)
	}
}

// TestCancelMoveLeavesBoard verifies behavior for the covered scenario.
func TestCancelMoveLeavesBoard(t *testing.T) {
	a, _ := newTestApp(t)
	task := addTask(t, a, "Hold")
	a.Handle(Do(IntentBeginMove))
	a.Handle(Do(IntentRight))
	a.Handle(Do(IntentCancel))
	if a.Mode() != ModeNormal || a.State().MovingTaskID != "" {
		t.Fatalf("expected cancelled move, got mode %s", a.Mode())
	}
	if _, ok := a.Board().Columns[0].Find(task.ID); !ok {
		t.Fatal("expected task to remain in column 0")
	}
}

// TestCancelEditKeepsPriority verifies behavior for the covered scenario.
func TestCancelEditKeepsPriority(t *testing.T) {
	a, _ := newTestApp(t)
	task := addTask(t, a, "Review")

	a.Handle(Do(IntentEditSelected))
	if a.Mode() != ModeEditing {
		t.Fatalf("mode = %s, want editing", a.Mode())
	}
	a.Handle(Do(IntentRaisePriority))
	a.Handle(Do(IntentRaisePriority))
	if got := a.State().Edit.Priority; got != domain.PriorityCritical {
		t.Fatalf("staged priority = %s, want Critical", got)
	}
	a.Handle(Do(IntentCancel))

	got, ok := a.Board().FindTask(task.ID)
	if !ok {
		t.Fatal("expected task after cancel")
	}
	if got.Priority != domain.PriorityMedium {
		t.Fatalf("priority = %s, want Medium", got.Priority)
	}
	if a.Status() != StatusCancelled {
		t.Fatalf("status = %q, want %q", a.Status(), StatusCancelled)
	}
}

// TestEditWritesBackToTask verifies behavior for the covered scenario.
func TestEditWritesBackToTask(t *testing.T) {
	now := time.Date(2026, 2, 21, 9, 30, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	current := now
	ids := sequentialIDs()
	a := New(domain.NewBoard(ids, ""), Config{IDGen: ids, Clock: func() time.Time { return current }})
	task := addTask(t, a, "Draft")

	current = later
	a.Handle(Do(IntentEditSelected))
	if got := a.State().Edit.Title; got != "Draft" {
		t.Fatalf("prefilled title = %q, want Draft", got)
	}
	if got := a.State().Edit.Focus; got != FieldTitle {
		t.Fatalf("focus = %s, want Title", got)
	}
	typeText(a, " v2 ")
	a.Handle(Do(IntentNextField))
	typeText(a, "notes")
	a.Handle(Do(IntentNextField))
	a.Handle(Do(IntentLowerPriority))
	a.Handle(Do(IntentConfirm))

	got, _ := a.Board().FindTask(task.ID)
	if got.Title != "Draft v2" || got.Description != "notes" || got.Priority != domain.PriorityLow {
		t.Fatalf("unexpected edited task %#v", got)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v", got.CreatedAt, got.UpdatedAt)
	}
	if a.Status() != StatusTaskUpdated {
		t.Fatalf("status = %q, want %q", a.Status(), StatusTaskUpdated)
	}
}

// TestBlankTitleConfirmKeepsMode verifies behavior for the covered scenario.
func TestBlankTitleConfirmKeepsMode(t *testing.T) {
	a, _ := newTestApp(t)
	a.Handle(Do(IntentNewTask))
	typeText(a, "   ")
	a.Handle(Do(IntentConfirm))
	if a.Mode() != ModeAddingTask {
		t.Fatalf("mode = %s, want adding", a.Mode())
	}
	if a.Board().TaskCount() != 0 {
		t.Fatal("blank title should not add a task")
	}

	a.Handle(Do(IntentCancel))
	task := addTask(t, a, "Named")
	a.Handle(Do(IntentEditSelected))
	for range len("Named") {
		a.Handle(Do(IntentBackspace))
	}
	a.Handle(Do(IntentConfirm))
	if a.Mode() != ModeEditing {
		t.Fatalf("mode = %s, want editing", a.Mode())
	}
	got, _ := a.Board().FindTask(task.ID)
	if got.Title != "Named" {
		t.Fatalf("title = %q, want unchanged", got.Title)
	}
}

// TestFormFocusAndPriorityBounds verifies behavior for the covered scenario.
func TestFormFocusAndPriorityBounds(t *testing.T) {
	a, _ := newTestApp(t)
	a.Handle(Do(IntentNewTask))

	order := []EditField{FieldDescription, FieldPriority, FieldTitle}
	for _, want := range order {
		a.Handle(Do(IntentNextField))
		if got := a.State().Edit.Focus; got != want {
			t.Fatalf("next focus = %s, want %s", got, want)
		}
	}
	a.Handle(Do(IntentPrevField))
	if got := a.State().Edit.Focus; got != FieldPriority {
		t.Fatalf("prev focus = %s, want Priority", got)
	}

	typeText(a, "ignored")
	a.Handle(Do(IntentBackspace))
	edit := a.State().Edit
	if edit.Title != "" || edit.Description != "" {
		t.Fatalf("text on priority focus should be ignored, got %#v", edit)
	}

	for range 5 {
		a.Handle(Do(IntentRaisePriority))
	}
	if got := a.State().Edit.Priority; got != domain.PriorityCritical {
		t.Fatalf("priority = %s, want Critical ceiling", got)
	}
	for range 5 {
		a.Handle(Do(IntentLowerPriority))
	}
	if got := a.State().Edit.Priority; got != domain.PriorityLow {
		t.Fatalf("priority = %s, want Low floor", got)
	}
}

// TestBackspaceIsRuneAware verifies behavior for the covered scenario.
func TestBackspaceIsRuneAware(t *testing.T) {
	a, _ := newTestApp(t)
	a.Handle(Do(IntentNewTask))
	typeText(a, "café")
	a.Handle(Do(IntentBackspace))
	if got := a.State().Edit.Title; got != "caf" {
		t.Fatalf("title = %q, want caf", got)
	}
}

// TestIntentsIgnoredOutsideTheirMode verifies behavior for the covered scenario.
func TestIntentsIgnoredOutsideTheirMode(t *testing.T) {
	a, _ := newTestApp(t)
	addTask(t, a, "One")
	before := a.State()

	for _, in := range []Intent{Char('x'), Do(IntentConfirm), Do(IntentCancel), Do(IntentNextField), Do(IntentRaisePriority), Do(IntentNone)} {
		a.Handle(in)
	}
	after := a.State()
	if after.Mode != ModeNormal || after.Board.TaskCount() != before.Board.TaskCount() {
		t.Fatalf("normal mode changed by form intents: %#v", after)
	}

	a.Handle(Do(IntentNewTask))
	a.Handle(Do(IntentRight))
	a.Handle(Do(IntentDeleteSelected))
	a.Handle(Do(IntentBeginMove))
	if a.Mode() != ModeAddingTask || a.State().SelectedColumn != 0 {
		t.Fatalf("form mode changed by navigation intents: %s col=%d", a.Mode(), a.State().SelectedColumn)
	}
	a.Handle(Do(IntentCancel))

	a.Handle(Do(IntentBeginMove))
	a.Handle(Char('x'))
	a.Handle(Do(IntentNewTask))
	a.Handle(Do(IntentDeleteSelected))
	if a.Mode() != ModeMovingTask || a.Board().TaskCount() != 1 {
		t.Fatalf("moving mode changed by unrelated intents: %s", a.Mode())
	}
}

// TestQuitInEveryMode verifies behavior for the covered scenario.
func TestQuitInEveryMode(t *testing.T) {
	setups := map[string]func(*Application){
		"normal": func(*Application) {},
		"adding": func(a *Application) { a.Handle(Do(IntentNewTask)) },
		"moving": func(a *Application) {
			_, _ = a.AddTask(0, domain.TaskInput{Title: "x"})
			a.Handle(Do(IntentBeginMove))
		},
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestApp(t)
			setup(a)
			a.Handle(Do(IntentQuit))
			if !a.ShouldQuit() {
				t.Fatal("expected quit")
			}
		})
	}
}

// TestNavigationClampsWithoutWrap verifies behavior for the covered scenario.
func TestNavigationClampsWithoutWrap(t *testing.T) {
	a, _ := newTestApp(t)
	addTask(t, a, "a")
	addTask(t, a, "b")

	a.Handle(Do(IntentDown))
	a.Handle(Do(IntentDown))
	if got := a.State().SelectedTask; got != 1 {
		t.Fatalf("selected task = %d, want 1", got)
	}
	a.Handle(Do(IntentUp))
	a.Handle(Do(IntentUp))
	if got := a.State().SelectedTask; got != 0 {
		t.Fatalf("selected task = %d, want 0", got)
	}
	a.Handle(Do(IntentLeft))
	if got := a.State().SelectedColumn; got != 0 {
		t.Fatalf("selected column = %d, want 0", got)
	}
	for range 4 {
		a.Handle(Do(IntentRight))
	}
	if got := a.State().SelectedColumn; got != 2 {
		t.Fatalf("selected column = %d, want 2", got)
	}
	if _, ok := a.SelectedTask(); ok {
		t.Fatal("expected no selected task in empty column")
	}
	a.Handle(Do(IntentEditSelected))
	if a.Mode() != ModeNormal || a.Status() != StatusNoTask {
		t.Fatalf("edit with no selection: mode %s status %q", a.Mode(), a.Status())
	}
}

// TestDeleteLastTaskClampsSelection verifies behavior for the covered scenario.
func TestDeleteLastTaskClampsSelection(t *testing.T) {
	a, _ := newTestApp(t)
	addTask(t, a, "a")
	last := addTask(t, a, "b")
	if got := a.State().SelectedTask; got != 1 {
		t.Fatalf("selected task = %d, want 1", got)
	}
	a.Handle(Do(IntentDeleteSelected))
	if _, ok := a.Board().FindTask(last.ID); ok {
		t.Fatal("expected task deleted")
	}
	if got := a.State().SelectedTask; got != 0 {
		t.Fatalf("selected task = %d, want 0", got)
	}
	a.Handle(Do(IntentDeleteSelected))
	if a.Board().TaskCount() != 0 || a.State().SelectedTask != 0 {
		t.Fatalf("expected empty board with cursor 0, got %#v", a.State())
	}
}

// TestMoveTaskToPrevColumn verifies behavior for the covered scenario.
func TestMoveTaskToPrevColumn(t *testing.T) {
	a, _ := newTestApp(t)
	task, err := a.AddTask(1, domain.TaskInput{Title: "Back"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	a.Handle(Do(IntentMoveToPrevColumn))
	if _, ok := a.Board().Columns[1].Find(task.ID); !ok {
		t.Fatal("column 0 selection should not move a task in column 1")
	}

	a.Handle(Do(IntentRight))
	a.Handle(Do(IntentMoveToPrevColumn))
	board := a.Board()
	if _, ok := board.Columns[0].Find(task.ID); !ok {
		t.Fatal("expected task moved to column 0")
	}
	if board.Columns[1].Len() != 0 {
		t.Fatal("expected column 1 empty")
	}
	if a.Status() != "Task moved to To Do" {
		t.Fatalf("status = %q", a.Status())
	}
	assertInvariants(t, a)
}

// TestAddTaskValidation verifies behavior for the covered scenario.
func TestAddTaskValidation(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.AddTask(0, domain.TaskInput{Title: "  "}); !errors.Is(err, ErrBlankTitle) {
		t.Fatalf("AddTask() error = %v, want ErrBlankTitle", err)
	}
	if _, err := a.AddTask(7, domain.TaskInput{Title: "x"}); err == nil {
		t.Fatal("expected missing column error")
	}
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))
	task, err := a.AddTask(2, domain.TaskInput{Title: " Pay rent ", DueAt: &due, Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.Title != "Pay rent" || task.DueAt == nil || task.DueAt.Location() != time.UTC {
		t.Fatalf("unexpected task %#v", task)
	}
}

// TestTaskIDAllocationSkipsCollisions verifies behavior for the covered scenario.
func TestTaskIDAllocationSkipsCollisions(t *testing.T) {
	ids := []string{"b", "c", "d", "", "c", "e"}
	next := 0
	gen := func() string {
		id := ids[next%len(ids)]
		next++
		return id
	}
	newBoard := func() domain.Board {
		return domain.Board{ID: "a", Columns: []domain.Column{domain.NewColumn("col", "Only")}}
	}
	a := New(newBoard(), Config{IDGen: gen})
	first, err := a.AddTask(0, domain.TaskInput{Title: "one"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	second, err := a.AddTask(0, domain.TaskInput{Title: "two"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if first.ID != "b" || second.ID != "c" {
		t.Fatalf("ids = %q, %q", first.ID, second.ID)
	}

	stuck := New(newBoard(), Config{IDGen: func() string { return "" }})
	if _, err := stuck.AddTask(0, domain.TaskInput{Title: "x"}); !errors.Is(err, ErrIDExhausted) {
		t.Fatalf("AddTask() error = %v, want ErrIDExhausted", err)
	}
}

// TestConfirmKeepsFormWhenIDAllocationFails verifies behavior for the covered scenario.
func TestConfirmKeepsFormWhenIDAllocationFails(t *testing.T) {
	board := domain.Board{ID: "a", Columns: []domain.Column{domain.NewColumn("col", "Only")}}
	a := New(board, Config{IDGen: func() string { return "" }, Clock: fixedClock(fixedNow)})
	a.Handle(Do(IntentNewTask))
	typeText(a, "Keep me")
	a.Handle(Do(IntentConfirm))

	if a.Mode() != ModeAddingTask {
		t.Fatalf("mode = %s, want adding task", a.Mode())
	}
	if got := a.State().Edit.Title; got != "Keep me" {
		t.Fatalf("staged title = %q, want %q", got, "Keep me")
	}
	if n := a.Board().TaskCount(); n != 0 {
		t.Fatalf("task count = %d, want 0", n)
	}
	if !strings.Contains(a.Status(), "unique task id") {
		t.Fatalf("status = %q", a.Status())
	}
}

// TestReplaceBoardClampsSelection verifies behavior for the covered scenario.
func TestReplaceBoardClampsSelection(t *testing.T) {
	a, _ := newTestApp(t)
	for range 2 {
		a.Handle(Do(IntentRight))
	}
	ids := sequentialIDs()
	a.ReplaceBoard(domain.NewBoard(ids, "Small", "Only"))
	state := a.State()
	if state.SelectedColumn != 0 || state.TargetColumn != 0 || state.SelectedTask != 0 {
		t.Fatalf("selection not clamped: %#v", state)
	}

	empty := New(domain.Board{ID: "x"}, Config{})
	empty.Handle(Do(IntentRight))
	empty.Handle(Do(IntentNewTask))
	empty.Handle(Do(IntentDeleteSelected))
	if empty.Mode() != ModeNormal {
		t.Fatalf("mode = %s, want normal on a board with no columns", empty.Mode())
	}
}

// TestStateIsACopy verifies behavior for the covered scenario.
func TestStateIsACopy(t *testing.T) {
	a, _ := newTestApp(t)
	addTask(t, a, "keep")
	state := a.State()
	state.Board.Columns[0].Tasks[0].Title = "mutated"
	a.Tick()
	if task, _ := a.SelectedTask(); task.Title != "keep" {
		t.Fatalf("state mutation leaked into application: %q", task.Title)
	}
}

// TestRandomIntentsPreserveInvariants verifies behavior for the covered scenario.
func TestRandomIntentsPreserveInvariants(t *testing.T) {
	intents := []Intent{
		Do(IntentLeft), Do(IntentRight), Do(IntentUp), Do(IntentDown),
		Do(IntentNewTask), Do(IntentEditSelected), Do(IntentDeleteSelected),
		Do(IntentBeginMove), Do(IntentMoveToPrevColumn), Do(IntentConfirm),
		Do(IntentCancel), Do(IntentNextField), Do(IntentPrevField),
		Do(IntentRaisePriority), Do(IntentLowerPriority), Do(IntentBackspace),
		Char('a'), Char('z'), Char(' '),
	}
	rng := rand.New(rand.NewPCG(7, 11))
	a, _ := newTestApp(t)
	for step := range 5000 {
		in := intents[rng.IntN(len(intents))]
		before := a.Board()
		a.Handle(in)
		assertInvariants(t, a)
		if after := a.Board(); after.TaskCount() < before.TaskCount()-1 {
			t.Fatalf("step %d: %v dropped more than one task", step, in)
		}
	}
}
