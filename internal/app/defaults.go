package app

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evanschultz/kanboard/internal/domain"
)

// DefaultBoardConfig configures the board created when the store is empty or
// unreadable.
type DefaultBoardConfig struct {
	Title       string
	Columns     []string
	SeedSamples bool
}

// sampleTasks are seeded into the first column when SeedSamples is set.
var sampleTasks = []domain.TaskInput{
	{
		Title:       "Welcome to kanboard",
		Description: "Use **h/l** to switch columns and **j/k** to pick a task.",
		Priority:    domain.PriorityMedium,
	},
	{
		Title:       "Try moving this task",
		Description: "Press `m`, choose a column with h/l, then press enter.",
		Priority:    domain.PriorityHigh,
	},
}

// NewDefaultBoard builds a fresh board. Blank titles fall back to the package
// defaults.
func NewDefaultBoard(idGen IDGenerator, clock Clock, cfg DefaultBoardConfig) domain.Board {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = domain.DefaultBoardTitle
	}
	columns := make([]string, 0, len(cfg.Columns))
	for _, name := range cfg.Columns {
		if name = strings.TrimSpace(name); name != "" {
			columns = append(columns, name)
		}
	}
	board := domain.NewBoard(idGen, title, columns...)
	if cfg.SeedSamples && len(board.Columns) > 0 {
		now := clock()
		for _, in := range sampleTasks {
			in.ID = idGen()
			board.Columns[0].Append(domain.NewTask(in, now))
		}
	}
	return board
}
