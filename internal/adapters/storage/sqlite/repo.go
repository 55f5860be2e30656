package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores one board as full snapshots.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite file at path and applies the schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:kanboard-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	// One connection keeps the in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate applies the schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			priority TEXT NOT NULL,
			due_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(column_id) REFERENCES board_columns(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_board_position ON board_columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column_position ON tasks(column_id, position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Load reads the stored board. It returns app.ErrNotFound when nothing has been
// saved and wraps decode failures with app.ErrCorruptBoard.
func (r *Repository) Load(ctx context.Context) (domain.Board, error) {
	var board domain.Board
	row := r.db.QueryRowContext(ctx, `SELECT id, title FROM boards ORDER BY rowid LIMIT 1`)
	if err := row.Scan(&board.ID, &board.Title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, app.ErrNotFound
		}
		return domain.Board{}, fmt.Errorf("load board: %w", err)
	}

	columns, err := r.loadColumns(ctx, board.ID)
	if err != nil {
		return domain.Board{}, err
	}
	board.Columns = columns
	if err := r.loadTasks(ctx, &board); err != nil {
		return domain.Board{}, err
	}
	if err := app.ValidateExternalBoard(board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

func (r *Repository) loadColumns(ctx context.Context, boardID string) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title
		FROM board_columns
		WHERE board_id = ?
		ORDER BY position ASC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Column, 0)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, domain.NewColumn(id, title))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	return out, nil
}

func (r *Repository) loadTasks(ctx context.Context, board *domain.Board) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT column_id, id, title, description, priority, due_at, created_at, updated_at
		FROM tasks
		ORDER BY column_id ASC, position ASC
	`)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		columnID, task, err := scanTask(rows)
		if err != nil {
			return err
		}
		column, ok := board.ColumnByID(columnID)
		if !ok {
			return fmt.Errorf("%w: task %q references unknown column %q", app.ErrCorruptBoard, task.ID, columnID)
		}
		column.Append(task)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return nil
}

// Save replaces everything stored with board inside one transaction.
func (r *Repository) Save(ctx context.Context, board domain.Board) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM tasks`, `DELETE FROM board_columns`, `DELETE FROM boards`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear board: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO boards(id, title) VALUES (?, ?)`, board.ID, board.Title); err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	for colPos, column := range board.Columns {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO board_columns(id, board_id, title, position)
			VALUES (?, ?, ?, ?)
		`, column.ID, board.ID, column.Title, colPos); err != nil {
			return fmt.Errorf("insert column %q: %w", column.ID, err)
		}
		for taskPos, task := range column.Tasks {
			if err = insertTask(ctx, tx, column.ID, taskPos, task); err != nil {
				return err
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, columnID string, position int, t domain.Task) error {
	tag := t.Priority.Tag()
	if tag == "" {
		return fmt.Errorf("insert task %q: %w", t.ID, domain.ErrInvalidPriority)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks(id, column_id, position, title, description, priority, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		columnID,
		position,
		t.Title,
		nullableText(t.Description),
		tag,
		nullableTS(t.DueAt),
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task %q: %w", t.ID, err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask decodes one task row; malformed values are reported as corruption.
func scanTask(s scanner) (string, domain.Task, error) {
	var (
		t          domain.Task
		columnID   string
		descRaw    sql.NullString
		priority   string
		dueRaw     sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&columnID, &t.ID, &t.Title, &descRaw, &priority, &dueRaw, &createdRaw, &updatedRaw); err != nil {
		return "", domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	var err error
	if t.Priority, err = domain.ParsePriority(priority); err != nil {
		return "", domain.Task{}, corrupt(t.ID, "priority", err)
	}
	if t.CreatedAt, err = parseTS(createdRaw); err != nil {
		return "", domain.Task{}, corrupt(t.ID, "created_at", err)
	}
	if t.UpdatedAt, err = parseTS(updatedRaw); err != nil {
		return "", domain.Task{}, corrupt(t.ID, "updated_at", err)
	}
	if t.DueAt, err = parseNullTS(dueRaw); err != nil {
		return "", domain.Task{}, corrupt(t.ID, "due_at", err)
	}
	if descRaw.Valid && strings.TrimSpace(descRaw.String) != "" {
		t.Description = descRaw.String
	}
	return columnID, t, nil
}

func corrupt(taskID, field string, err error) error {
	return fmt.Errorf("%w: task %q %s: %w", app.ErrCorruptBoard, taskID, field, err)
}

// ts formats a timestamp in UTC with nanosecond precision.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS formats an optional timestamp.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func nullableText(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// parseTS parses a stored timestamp strictly.
func parseTS(v string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// parseNullTS parses an optional stored timestamp.
func parseNullTS(v sql.NullString) (*time.Time, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil, nil
	}
	parsed, err := parseTS(v.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
