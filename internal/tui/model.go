package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/kanboard/internal/app"
)

// defaultTickInterval is the idle cadence when no option overrides it.
const defaultTickInterval = 250 * time.Millisecond

// Model adapts an *app.Application to the bubbletea loop. It decodes key
// presses into intents and renders read-only snapshots; all board state lives
// in the application.
type Model struct {
	app *app.Application

	keys keyMap
	help help.Model

	width  int
	height int
	ready  bool

	tickInterval time.Duration
	display      DisplayConfig
	clipboard    ClipboardWriter
	markdown     *markdownRenderer
}

// tickMsg marks one idle tick.
type tickMsg time.Time

// yankedMsg reports the outcome of a clipboard copy.
type yankedMsg struct {
	title string
	err   error
}

// NewModel constructs a model around application.
func NewModel(application *app.Application, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		app:          application,
		keys:         newKeyMap(),
		help:         h,
		tickInterval: defaultTickInterval,
		display:      DefaultDisplayConfig(),
		clipboard:    defaultClipboard,
		markdown:     &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.app.Tick()
		return m, m.tick()

	case yankedMsg:
		if msg.err != nil {
			m.app.SetStatus("Copy failed: " + msg.err.Error())
			return m, nil
		}
		m.app.SetStatus(fmt.Sprintf("Copied %q", truncate(msg.title, 32)))
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	state := m.app.State()
	if state.Mode == app.ModeNormal {
		switch {
		case key.Matches(msg, m.keys.toggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.help.ShowAll && msg.String() == "esc":
			m.help.ShowAll = false
			return m, nil
		case key.Matches(msg, m.keys.yank):
			return m, m.yankSelected()
		}
	}

	for _, in := range decodeKey(m.keys, state, msg) {
		m.app.Handle(in)
	}
	if m.app.Mode() != app.ModeNormal {
		m.help.ShowAll = false
	}
	if m.app.ShouldQuit() {
		return m, tea.Quit
	}
	return m, nil
}

// yankSelected copies the selected task title off the update path.
func (m Model) yankSelected() tea.Cmd {
	task, ok := m.app.YankSelected()
	if !ok {
		return nil
	}
	write := m.clipboard
	return func() tea.Msg {
		return yankedMsg{title: task.Title, err: write(task.Title)}
	}
}

// Application returns the wrapped application.
func (m Model) Application() *app.Application {
	return m.app
}
