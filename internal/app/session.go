package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanschultz/kanboard/internal/domain"
)

// LoadOutcome describes how the startup board was obtained.
type LoadOutcome int

const (
	// LoadLoaded means the stored board was read and validated.
	LoadLoaded LoadOutcome = iota
	// LoadInitialized means the store was empty and a default board was saved.
	LoadInitialized
	// LoadFallback means the store could not be used and a default board is in
	// memory only.
	LoadFallback
)

// String returns a log-friendly outcome label.
func (o LoadOutcome) String() string {
	switch o {
	case LoadLoaded:
		return "loaded"
	case LoadInitialized:
		return "initialized"
	case LoadFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// LoadReport summarizes LoadBoard. Err is set only for LoadFallback, or for
// LoadInitialized when saving the fresh board failed.
type LoadReport struct {
	Outcome LoadOutcome
	Columns int
	Tasks   int
	Err     error
}

// LoadBoard reads the stored board into a. An empty store is initialized with
// fallback and saved; a corrupt or unreadable store leaves fallback in place
// with a non-fatal status message.
func LoadBoard(ctx context.Context, store BoardStore, a *Application, fallback domain.Board) LoadReport {
	board, err := store.Load(ctx)
	switch {
	case err == nil:
		if verr := ValidateExternalBoard(board); verr != nil {
			return useFallback(a, fallback, verr)
		}
		a.ReplaceBoard(board)
		a.SetStatus("Board loaded")
		return report(LoadLoaded, board, nil)
	case errors.Is(err, ErrNotFound):
		a.ReplaceBoard(fallback)
		if serr := store.Save(ctx, fallback); serr != nil {
			a.SetStatus("New board created (not saved)")
			return report(LoadInitialized, fallback, fmt.Errorf("save new board: %w", serr))
		}
		a.SetStatus("New board created")
		return report(LoadInitialized, fallback, nil)
	default:
		return useFallback(a, fallback, err)
	}
}

func useFallback(a *Application, fallback domain.Board, err error) LoadReport {
	a.ReplaceBoard(fallback)
	a.SetStatus("Stored board unreadable, started a new one")
	return report(LoadFallback, fallback, err)
}

func report(outcome LoadOutcome, board domain.Board, err error) LoadReport {
	return LoadReport{
		Outcome: outcome,
		Columns: len(board.Columns),
		Tasks:   board.TaskCount(),
		Err:     err,
	}
}

// SaveBoard persists the application's board as one full snapshot.
func SaveBoard(ctx context.Context, store BoardStore, a *Application) error {
	if err := store.Save(ctx, a.Board()); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}
