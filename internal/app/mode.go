package app

// InputMode gates which intents are meaningful.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeEditing
	ModeAddingTask
	ModeMovingTask
)

// String returns a short label for status rendering.
func (m InputMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeEditing:
		return "editing"
	case ModeAddingTask:
		return "adding"
	case ModeMovingTask:
		return "moving"
	default:
		return "unknown"
	}
}

// IsForm reports whether the add/edit form is open.
func (m InputMode) IsForm() bool {
	return m == ModeEditing || m == ModeAddingTask
}
