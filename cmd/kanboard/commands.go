package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/domain"
)

// errCorruptStore refuses non-interactive commands on an unreadable store so
// they never overwrite it.
var errCorruptStore = errors.New("stored board is unreadable; fix or remove the database, or import a snapshot")

func newPathsCommand(opts *globalOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and database paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, configPath, dbPath, _, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", dbPath)
			return nil
		},
	}
}

// withStore runs fn against an opened store and a loaded application. A
// corrupt store is an error here rather than a silent fallback.
func withStore(ctx context.Context, opts *globalOptions, stderr io.Writer, command string, fn func(*runtimeEnv, app.BoardStore, *app.Application) error) error {
	env, err := newRuntimeEnv(*opts, stderr, command, true)
	if err != nil {
		return err
	}
	defer env.Close(stderr)

	repo, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(repo)

	a, report := env.openApplication(ctx, repo)
	if report.Outcome == app.LoadFallback {
		return fmt.Errorf("%w: %w", errCorruptStore, report.Err)
	}
	env.logger.Info("command flow start", "command", command)
	if err := fn(env, repo, a); err != nil {
		env.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	env.logger.Info("command flow complete", "command", command)
	return nil
}

func newListCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every column and task as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), opts, stderr, "list", func(_ *runtimeEnv, _ app.BoardStore, a *app.Application) error {
				_, err := fmt.Fprintln(stdout, renderBoardTable(a.Board()))
				return err
			})
		},
	}
}

// renderBoardTable lays the board out one row per task, column order first.
func renderBoardTable(board domain.Board) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Column", "#", "Priority", "Title", "Due", "ID").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, column := range board.Columns {
		if column.Len() == 0 {
			t.Row(column.Title, "-", "", "(empty)", "", "")
			continue
		}
		for idx, task := range column.Tasks {
			due := ""
			if task.DueAt != nil {
				due = task.DueAt.Local().Format("2006-01-02")
			}
			t.Row(column.Title, strconv.Itoa(idx+1), task.Priority.String(), task.Title, due, task.ID)
		}
	}
	return board.Title + "\n" + t.Render()
}

func newAddCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		description string
		priority    string
		due         string
		column      int
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Append a task to a column and save the board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.TaskInput{
				Title:       strings.Join(args, " "),
				Description: description,
			}
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}
			in.Priority = p
			if strings.TrimSpace(due) != "" {
				dueAt, err := parseDue(due, time.Local)
				if err != nil {
					return err
				}
				in.DueAt = &dueAt
			}
			return withStore(cmd.Context(), opts, stderr, "add", func(env *runtimeEnv, store app.BoardStore, a *app.Application) error {
				task, err := a.AddTask(column-1, in)
				if err != nil {
					return fmt.Errorf("add task: %w", err)
				}
				if err := app.SaveBoard(cmd.Context(), store, a); err != nil {
					return err
				}
				board := a.Board()
				env.logger.Info("task added", "task_id", task.ID, "column", board.Columns[column-1].Title)
				_, err = fmt.Fprintf(stdout, "added %s to %s\n", task.ID, board.Columns[column-1].Title)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "markdown description")
	cmd.Flags().StringVarP(&priority, "priority", "p", domain.DefaultPriority.Tag(), "low, medium, high or critical")
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY-MM-DD (local) or RFC3339")
	cmd.Flags().IntVarP(&column, "column", "c", 1, "1-based column position")
	return cmd
}

// parseDue accepts a calendar date in loc or a full RFC3339 timestamp and
// returns UTC.
func parseDue(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: want YYYY-MM-DD or RFC3339", raw)
	}
	return t.UTC(), nil
}

func newExportCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole board as a JSON or YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := app.ParseSnapshotFormat(format)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), opts, stderr, "export", func(_ *runtimeEnv, _ app.BoardStore, a *app.Application) error {
				return writeSnapshotTo(outPath, stdout, app.NewSnapshot(a.Board(), time.Now()), f)
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", string(app.SnapshotFormatJSON), "json or yaml")
	return cmd
}

func writeSnapshotTo(outPath string, stdout io.Writer, snap app.Snapshot, format app.SnapshotFormat) error {
	if outPath == "-" || outPath == "" {
		return app.WriteSnapshot(stdout, snap, format)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := app.WriteSnapshot(file, snap, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func newImportCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		inPath string
		format string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored board with a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			if format == "" {
				format = formatFromExt(inPath)
			}
			f, err := app.ParseSnapshotFormat(format)
			if err != nil {
				return err
			}
			file, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			defer file.Close()
			snap, err := app.ReadSnapshot(file, f)
			if err != nil {
				return err
			}
			board, err := snap.ToBoard()
			if err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}
			return importBoard(cmd.Context(), opts, stdout, stderr, board)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input snapshot file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension)")
	return cmd
}

// importBoard replaces whatever is stored, corrupt or not.
func importBoard(ctx context.Context, opts *globalOptions, stdout, stderr io.Writer, board domain.Board) error {
	env, err := newRuntimeEnv(*opts, stderr, "import", true)
	if err != nil {
		return err
	}
	defer env.Close(stderr)
	repo, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(repo)

	if err := repo.Save(ctx, board); err != nil {
		env.logger.Error("command flow failed", "command", "import", "err", err)
		return fmt.Errorf("import snapshot: %w", err)
	}
	env.logger.Info("board imported", "columns", len(board.Columns), "tasks", board.TaskCount())
	_, err = fmt.Fprintf(stdout, "imported %d columns, %d tasks\n", len(board.Columns), board.TaskCount())
	return err
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return string(app.SnapshotFormatYAML)
	default:
		return string(app.SnapshotFormatJSON)
	}
}

func newInitConfigCommand(opts *globalOptions, stdout io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a starter config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, configPath, dbPath, _, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", configPath)
			}
			body, err := config.Template(config.Default(dbPath))
			if err != nil {
				return err
			}
			if err := config.EnsureConfigDir(configPath); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(configPath, body, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			_, err = fmt.Fprintf(stdout, "wrote %s\n", configPath)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
