package domain

import (
	"fmt"
	"strings"
)

// Priority orders tasks from Low to Critical. The zero value means "unset".
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// DefaultPriority is assigned to tasks created without an explicit priority.
const DefaultPriority = PriorityMedium

// Priorities lists every valid priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ParsePriority resolves a persisted priority tag.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

// Valid reports whether p is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Tag returns the lowercase persisted form.
func (p Priority) Tag() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return ""
	}
}

// String returns the display label.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Raise returns the next higher level; Critical is a ceiling.
func (p Priority) Raise() Priority {
	if !p.Valid() {
		return DefaultPriority
	}
	if p == PriorityCritical {
		return p
	}
	return p + 1
}

// Lower returns the next lower level; Low is a floor.
func (p Priority) Lower() Priority {
	if !p.Valid() {
		return DefaultPriority
	}
	if p == PriorityLow {
		return p
	}
	return p - 1
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, int(p))
	}
	return []byte(p.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
