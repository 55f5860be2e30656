package tui

import (
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"

	"github.com/evanschultz/kanboard/internal/app"
)

// keyMap holds every binding; the help line shows the subset for the active mode.
type keyMap struct {
	quit       key.Binding
	forceQuit  key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	addTask    key.Binding
	editTask   key.Binding
	deleteTask key.Binding
	beginMove  key.Binding
	movePrev   key.Binding
	yank       key.Binding

	confirm   key.Binding
	cancel    key.Binding
	nextField key.Binding
	prevField key.Binding
	raise     key.Binding
	lower     key.Binding
	backspace key.Binding

	targetLeft  key.Binding
	targetRight key.Binding
	confirmMove key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		forceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit task")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		beginMove:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move task")),
		movePrev:   key.NewBinding(key.WithKeys("M", "shift+m"), key.WithHelp("M", "move to previous column")),
		yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),

		confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		nextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next field")),
		prevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "previous field")),
		raise:     key.NewBinding(key.WithKeys("+", "=", "right", "l"), key.WithHelp("+/→", "raise priority")),
		lower:     key.NewBinding(key.WithKeys("-", "_", "left", "h"), key.WithHelp("-/←", "lower priority")),
		backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete char")),

		targetLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "target left")),
		targetRight: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "target right")),
		confirmMove: key.NewBinding(key.WithKeys("enter", "m"), key.WithHelp("enter", "move here")),
	}
}

// ShortHelp returns the normal-mode summary.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addTask, k.editTask, k.deleteTask, k.beginMove, k.toggleHelp, k.quit}
}

// FullHelp returns every normal-mode binding grouped by purpose.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.addTask, k.editTask, k.deleteTask, k.yank},
		{k.beginMove, k.movePrev, k.toggleHelp, k.quit},
	}
}

// formKeys is the help view while the add/edit form is open.
type formKeys struct {
	keys          keyMap
	priorityFocus bool
}

func (f formKeys) ShortHelp() []key.Binding {
	if f.priorityFocus {
		return []key.Binding{f.keys.raise, f.keys.lower, f.keys.nextField, f.keys.confirm, f.keys.cancel}
	}
	return []key.Binding{f.keys.nextField, f.keys.prevField, f.keys.confirm, f.keys.cancel}
}

func (f formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{f.keys.nextField, f.keys.prevField, f.keys.backspace},
		{f.keys.raise, f.keys.lower},
		{f.keys.confirm, f.keys.cancel, f.keys.forceQuit},
	}
}

// moveKeys is the help view while choosing a destination column.
type moveKeys struct {
	keys keyMap
}

func (m moveKeys) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.targetLeft, m.keys.targetRight, m.keys.confirmMove, m.keys.cancel}
}

func (m moveKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp(), {m.keys.quit}}
}

// helpFor picks the help bindings for state.
func (k keyMap) helpFor(state app.State) help.KeyMap {
	switch state.Mode {
	case app.ModeAddingTask, app.ModeEditing:
		return formKeys{keys: k, priorityFocus: state.Edit.Focus == app.FieldPriority}
	case app.ModeMovingTask:
		return moveKeys{keys: k}
	default:
		return k
	}
}
