package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/evanschultz/kanboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/platform"
	"github.com/evanschultz/kanboard/internal/tui"
)

// version is stamped at build time.
var version = "dev"

// Environment variables for the app name and dev mode defaults.
const (
	envAppName = "KANBOARD_APP_NAME"
	envDevMode = "KANBOARD_DEV_MODE"
)

type program interface {
	Run() (tea.Model, error)
}

// programFactory is swapped out by tests.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree for args. fang reports returned errors on
// stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt),
	)
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if v := strings.TrimSpace(os.Getenv(envAppName)); v != "" {
		opts.appName = v
	}
	if v, ok := parseBoolEnv(envDevMode); ok {
		opts.devMode = v
	}

	root := &cobra.Command{
		Use:   "kanboard",
		Short: "A keyboard-driven kanban board for the terminal",
		Long: "kanboard keeps one board of columns and tasks in a local SQLite file.\n" +
			"Run it without a subcommand to open the interactive board.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env "+config.EnvConfigPath+")")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database (env "+config.EnvDBPath+")")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newListCommand(opts, stdout, stderr),
		newAddCommand(opts, stdout, stderr),
		newExportCommand(opts, stdout, stderr),
		newImportCommand(opts, stdout, stderr),
		newInitConfigCommand(opts, stdout),
	)
	return root
}

// runtimeEnv is everything a command needs after flags, env and config have
// been resolved.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

// resolvePaths applies flag > env > platform default for the config and db
// locations.
func resolvePaths(opts globalOptions) (platform.Paths, string, string, bool, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}
	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	}
	if configPath == "" {
		configPath = paths.ConfigPath
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv(config.EnvDBPath))
	}
	dbOverridden := dbPath != ""
	if !dbOverridden {
		dbPath = paths.DBPath
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// newRuntimeEnv loads config and builds the logger. console=false keeps every
// event off stderr from the first line on. Callers must Close the returned env.
func newRuntimeEnv(opts globalOptions, stderr io.Writer, command string, console bool) (*runtimeEnv, error) {
	paths, configPath, dbPath, dbOverridden, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.SetConsoleEnabled(console)
	env := &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return env, nil
}

func (e *runtimeEnv) Close(stderr io.Writer) {
	if err := e.logger.Close(); err != nil && e.logger.consoleActive() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// openStore opens the configured sqlite file.
func (e *runtimeEnv) openStore() (*sqlite.Repository, error) {
	e.logger.Info("opening sqlite repository", "db_path", e.cfg.Database.Path)
	repo, err := sqlite.Open(e.cfg.Database.Path)
	if err != nil {
		e.logger.Error("sqlite open failed", "db_path", e.cfg.Database.Path, "err", err)
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	return repo, nil
}

func (e *runtimeEnv) closeStore(repo *sqlite.Repository) {
	if err := repo.Close(); err != nil {
		e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
	}
}

// defaultBoard builds the board used for a fresh or unreadable store.
func (e *runtimeEnv) defaultBoard() app.DefaultBoardConfig {
	return app.DefaultBoardConfig{
		Title:       e.cfg.Board.Title,
		Columns:     append([]string(nil), e.cfg.Board.Columns...),
		SeedSamples: e.cfg.Board.SeedSamples,
	}
}

// openApplication loads the stored board into a fresh application.
func (e *runtimeEnv) openApplication(ctx context.Context, repo *sqlite.Repository) (*app.Application, app.LoadReport) {
	fallback := app.NewDefaultBoard(nil, nil, e.defaultBoard())
	a := app.New(fallback, app.Config{})
	report := app.LoadBoard(ctx, repo, a, fallback)
	switch report.Outcome {
	case app.LoadLoaded:
		e.logger.Info("board loaded", "columns", report.Columns, "tasks", report.Tasks)
	case app.LoadInitialized:
		if report.Err != nil {
			e.logger.Error("new board could not be saved", "err", report.Err)
		} else {
			e.logger.Info("new board created", "columns", report.Columns)
		}
	case app.LoadFallback:
		e.logger.Warn("stored board unreadable, using a new board", "db_path", e.cfg.Database.Path, "err", report.Err)
	}
	return a, report
}

// runBoard runs the interactive session: load, loop, save once at exit.
func runBoard(ctx context.Context, opts *globalOptions, stderr io.Writer) error {
	// Console output would corrupt the alternate screen.
	env, err := newRuntimeEnv(*opts, stderr, "tui", false)
	if err != nil {
		return err
	}
	defer env.Close(stderr)

	tick, err := env.cfg.TickInterval()
	if err != nil {
		return err
	}
	repo, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(repo)

	a, _ := env.openApplication(ctx, repo)
	m := tui.NewModel(a,
		tui.WithTickInterval(tick),
		tui.WithDisplayConfig(tui.DisplayConfig{
			ShowDueDate:            env.cfg.UI.ShowDueDate,
			ShowDescriptionPreview: env.cfg.UI.ShowDescriptionPreview,
		}),
	)

	env.logger.Info("starting tui program loop")
	_, runErr := programFactory(m).Run()
	if runErr != nil {
		env.logger.Error("tui program terminated with error", "err", runErr)
		runErr = fmt.Errorf("run tui program: %w", runErr)
	}

	// Save even when the loop was interrupted.
	saveErr := app.SaveBoard(context.WithoutCancel(ctx), repo, a)
	if saveErr != nil {
		env.logger.Error("board save failed", "db_path", env.cfg.Database.Path, "err", saveErr)
		_, _ = fmt.Fprintf(stderr, "warning: board not saved: %v\n", saveErr)
	} else {
		board := a.Board()
		env.logger.Info("board saved", "columns", len(board.Columns), "tasks", board.TaskCount())
	}
	env.logger.Info("command flow complete", "command", "tui")
	return errors.Join(runErr, saveErr)
}

// parseBoolEnv reads a boolean env var; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
