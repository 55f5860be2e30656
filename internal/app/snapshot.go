package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evanschultz/kanboard/internal/domain"
)

// SnapshotVersion identifies the export format.
const SnapshotVersion = "kanboard.snapshot.v1"

// SnapshotFormat selects the export/import encoding.
type SnapshotFormat string

// SnapshotFormatJSON and related constants define the supported encodings.
const (
	SnapshotFormatJSON SnapshotFormat = "json"
	SnapshotFormatYAML SnapshotFormat = "yaml"
)

// ParseSnapshotFormat resolves a user-supplied format name.
func ParseSnapshotFormat(raw string) (SnapshotFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return SnapshotFormatJSON, nil
	case "yaml", "yml":
		return SnapshotFormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", raw)
	}
}

// Snapshot is the portable whole-board export.
type Snapshot struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Board      SnapshotBoard `json:"board" yaml:"board"`
}

// SnapshotBoard is the exported board.
type SnapshotBoard struct {
	ID      string           `json:"id" yaml:"id"`
	Title   string           `json:"title" yaml:"title"`
	Columns []SnapshotColumn `json:"columns" yaml:"columns"`
}

// SnapshotColumn is one exported column; Tasks keep their board order.
type SnapshotColumn struct {
	ID    string         `json:"id" yaml:"id"`
	Title string         `json:"title" yaml:"title"`
	Tasks []SnapshotTask `json:"tasks" yaml:"tasks"`
}

// SnapshotTask is one exported task.
type SnapshotTask struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    string     `json:"priority" yaml:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewSnapshot captures board at now.
func NewSnapshot(board domain.Board, now time.Time) Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC(),
		Board: SnapshotBoard{
			ID:      board.ID,
			Title:   board.Title,
			Columns: make([]SnapshotColumn, 0, len(board.Columns)),
		},
	}
	for _, column := range board.Columns {
		out := SnapshotColumn{
			ID:    column.ID,
			Title: column.Title,
			Tasks: make([]SnapshotTask, 0, column.Len()),
		}
		for _, task := range column.Tasks {
			out.Tasks = append(out.Tasks, snapshotTaskFromDomain(task))
		}
		snap.Board.Columns = append(snap.Board.Columns, out)
	}
	return snap
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority.Tag(),
		DueAt:       copyTimePtr(t.DueAt),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

// ToBoard rebuilds and validates the domain board.
func (s Snapshot) ToBoard() (domain.Board, error) {
	if strings.TrimSpace(s.Version) != SnapshotVersion {
		return domain.Board{}, fmt.Errorf("%w: %q", ErrUnsupportedSnapshotVersion, s.Version)
	}
	board := domain.Board{
		ID:      s.Board.ID,
		Title:   s.Board.Title,
		Columns: make([]domain.Column, 0, len(s.Board.Columns)),
	}
	for _, column := range s.Board.Columns {
		out := domain.NewColumn(column.ID, column.Title)
		for _, task := range column.Tasks {
			converted, err := task.toDomain()
			if err != nil {
				return domain.Board{}, err
			}
			out.Append(converted)
		}
		board.Columns = append(board.Columns, out)
	}
	if err := ValidateExternalBoard(board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

func (t SnapshotTask) toDomain() (domain.Task, error) {
	priority, err := domain.ParsePriority(t.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: task %q: %w", ErrCorruptBoard, t.ID, err)
	}
	if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
		return domain.Task{}, fmt.Errorf("%w: task %q: missing created_at or updated_at: %w", ErrCorruptBoard, t.ID, domain.ErrInvalidTime)
	}
	description := t.Description
	if strings.TrimSpace(description) == "" {
		description = ""
	}
	return domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: description,
		Priority:    priority,
		DueAt:       copyTimePtr(t.DueAt),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}, nil
}

// WriteSnapshot encodes snap to w.
func WriteSnapshot(w io.Writer, snap Snapshot, format SnapshotFormat) error {
	switch format {
	case SnapshotFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json snapshot: %w", err)
		}
		return nil
	}
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader, format SnapshotFormat) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case SnapshotFormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	return snap, nil
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := in.UTC()
	return &out
}
