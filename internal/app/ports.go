package app

import (
	"context"

	"github.com/evanschultz/kanboard/internal/domain"
)

// BoardStore is the persistence collaborator. Load returns ErrNotFound when
// nothing has been saved yet and an error wrapping ErrCorruptBoard when stored
// records cannot be decoded. Save fully replaces the stored board.
type BoardStore interface {
	Load(context.Context) (domain.Board, error)
	Save(context.Context, domain.Board) error
}
