package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/kanboard/internal/app"
)

// decodeKey maps one key press to the intents it produces in state. Keys with
// no meaning in the current mode decode to nothing.
func decodeKey(keys keyMap, state app.State, msg tea.KeyPressMsg) []app.Intent {
	if key.Matches(msg, keys.forceQuit) {
		return []app.Intent{app.Do(app.IntentQuit)}
	}
	switch state.Mode {
	case app.ModeNormal:
		return decodeNormalKey(keys, msg)
	case app.ModeAddingTask, app.ModeEditing:
		return decodeFormKey(keys, state.Edit.Focus, msg)
	case app.ModeMovingTask:
		return decodeMoveKey(keys, msg)
	default:
		return nil
	}
}

func decodeNormalKey(keys keyMap, msg tea.KeyPressMsg) []app.Intent {
	switch {
	case key.Matches(msg, keys.quit):
		return intents(app.IntentQuit)
	case key.Matches(msg, keys.moveLeft):
		return intents(app.IntentLeft)
	case key.Matches(msg, keys.moveRight):
		return intents(app.IntentRight)
	case key.Matches(msg, keys.moveUp):
		return intents(app.IntentUp)
	case key.Matches(msg, keys.moveDown):
		return intents(app.IntentDown)
	case key.Matches(msg, keys.addTask):
		return intents(app.IntentNewTask)
	case key.Matches(msg, keys.editTask):
		return intents(app.IntentEditSelected)
	case key.Matches(msg, keys.deleteTask):
		return intents(app.IntentDeleteSelected)
	case key.Matches(msg, keys.movePrev):
		return intents(app.IntentMoveToPrevColumn)
	case key.Matches(msg, keys.beginMove):
		return intents(app.IntentBeginMove)
	default:
		return nil
	}
}

func decodeFormKey(keys keyMap, focus app.EditField, msg tea.KeyPressMsg) []app.Intent {
	switch {
	case key.Matches(msg, keys.confirm):
		return intents(app.IntentConfirm)
	case key.Matches(msg, keys.cancel):
		return intents(app.IntentCancel)
	case key.Matches(msg, keys.nextField):
		return intents(app.IntentNextField)
	case key.Matches(msg, keys.prevField):
		return intents(app.IntentPrevField)
	case key.Matches(msg, keys.backspace):
		return intents(app.IntentBackspace)
	}
	if focus == app.FieldPriority {
		switch {
		case key.Matches(msg, keys.raise):
			return intents(app.IntentRaisePriority)
		case key.Matches(msg, keys.lower):
			return intents(app.IntentLowerPriority)
		}
		return nil
	}
	return textIntents(msg)
}

func decodeMoveKey(keys keyMap, msg tea.KeyPressMsg) []app.Intent {
	switch {
	case key.Matches(msg, keys.quit):
		return intents(app.IntentQuit)
	case key.Matches(msg, keys.targetLeft):
		return intents(app.IntentLeft)
	case key.Matches(msg, keys.targetRight):
		return intents(app.IntentRight)
	case key.Matches(msg, keys.confirmMove):
		return intents(app.IntentConfirm)
	case key.Matches(msg, keys.cancel):
		return intents(app.IntentCancel)
	default:
		return nil
	}
}

// textIntents turns printable key text into character intents. Chorded keys
// produce nothing.
func textIntents(msg tea.KeyPressMsg) []app.Intent {
	if msg.Text == "" || msg.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
		return nil
	}
	out := make([]app.Intent, 0, len(msg.Text))
	for _, r := range msg.Text {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, app.Char(r))
	}
	return out
}

func intents(kind app.IntentKind) []app.Intent {
	return []app.Intent{app.Do(kind)}
}
