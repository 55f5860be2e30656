package tui

import (
	"time"

	"github.com/atotto/clipboard"
)

// DisplayConfig toggles optional parts of the board view.
type DisplayConfig struct {
	ShowDueDate            bool
	ShowDescriptionPreview bool
}

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

type Option func(*Model)

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		ShowDueDate:            true,
		ShowDescriptionPreview: true,
	}
}

// defaultClipboard writes through atotto/clipboard.
func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}

func WithDisplayConfig(cfg DisplayConfig) Option {
	return func(m *Model) {
		m.display = cfg
	}
}

// WithTickInterval sets the idle tick cadence; non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

func WithClipboard(w ClipboardWriter) Option {
	return func(m *Model) {
		if w != nil {
			m.clipboard = w
		}
	}
}
