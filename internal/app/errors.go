package app

import "errors"

// ErrNotFound and related errors describe persistence and import failures.
var (
	ErrNotFound                   = errors.New("not found")
	ErrCorruptBoard               = errors.New("corrupt board")
	ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")
	ErrNoColumn                   = errors.New("no such column")
	ErrBlankTitle                 = errors.New("title is required")
	ErrIDExhausted                = errors.New("could not allocate a unique task id")
)
