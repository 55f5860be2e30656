package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/evanschultz/kanboard/internal/domain"
)

// CheckIdentifiers verifies that every board, column and task identifier is a
// well-formed UUID. Boards read from outside the process are only accepted
// when this and domain validation both pass.
func CheckIdentifiers(board domain.Board) error {
	if _, err := uuid.Parse(board.ID); err != nil {
		return fmt.Errorf("board id %q: %w", board.ID, domain.ErrInvalidID)
	}
	for _, column := range board.Columns {
		if _, err := uuid.Parse(column.ID); err != nil {
			return fmt.Errorf("column id %q: %w", column.ID, domain.ErrInvalidID)
		}
		for _, task := range column.Tasks {
			if _, err := uuid.Parse(task.ID); err != nil {
				return fmt.Errorf("task id %q: %w", task.ID, domain.ErrInvalidID)
			}
		}
	}
	return nil
}

// ValidateExternalBoard runs domain and identifier validation on a board that
// was loaded or imported, wrapping any failure with ErrCorruptBoard.
func ValidateExternalBoard(board domain.Board) error {
	if err := board.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBoard, err)
	}
	if err := CheckIdentifiers(board); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBoard, err)
	}
	return nil
}
