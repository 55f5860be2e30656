package tui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/exp/teatest/v2"
)

// TestModelWithTeatest verifies behavior for the covered scenario.
func TestModelWithTeatest(t *testing.T) {
	a := newTestApplication(t, "First task")
	m := NewModel(a, WithTickInterval(20*time.Millisecond))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "First task")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	if !a.ShouldQuit() {
		t.Fatal("expected application to record the quit")
	}
}

// TestModelWithTeatestAddTask verifies behavior for the covered scenario.
func TestModelWithTeatestAddTask(t *testing.T) {
	a := newTestApplication(t)
	m := NewModel(a, WithTickInterval(20*time.Millisecond))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "kanboard")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'n', Text: "n"})
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "(required)")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	for _, r := range "Deploy" {
		tm.Send(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	tm.Send(tea.KeyPressMsg{Code: tea.KeyEnter})
	tm.Send(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	board := a.Board()
	if board.Columns[0].Len() != 1 || board.Columns[0].Tasks[0].Title != "Deploy" {
		t.Fatalf("expected Deploy in first column, got %#v", board.Columns[0].Tasks)
	}
}
