package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidTime     = errors.New("invalid timestamp")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrNoColumns       = errors.New("board has no columns")
)
