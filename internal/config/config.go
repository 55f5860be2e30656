package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/evanschultz/kanboard/internal/domain"
)

// Environment variables consulted by the command layer.
const (
	EnvConfigPath = "KANBOARD_CONFIG"
	EnvDBPath     = "KANBOARD_DB_PATH"
)

// DefaultTickInterval is the idle tick cadence of the TUI loop.
const DefaultTickInterval = 250 * time.Millisecond

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Board    BoardConfig    `toml:"board"`
	UI       UIConfig       `toml:"ui"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// BoardConfig only applies when a fresh board is created.
type BoardConfig struct {
	Title       string   `toml:"title"`
	Columns     []string `toml:"columns"`
	SeedSamples bool     `toml:"seed_samples"`
}

type UIConfig struct {
	TickInterval           string `toml:"tick_interval"`
	ShowDueDate            bool   `toml:"show_due_date"`
	ShowDescriptionPreview bool   `toml:"show_description_preview"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Board: BoardConfig{
			Title:       domain.DefaultBoardTitle,
			Columns:     append([]string(nil), domain.DefaultColumnTitles...),
			SeedSamples: false,
		},
		UI: UIConfig{
			TickInterval:           DefaultTickInterval.String(),
			ShowDueDate:            true,
			ShowDescriptionPreview: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     filepath.Join(".kanboard", "log"),
			},
		},
	}
}

// Load decodes the TOML file at path over defaults. A blank path, a missing
// file or an empty file yields defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return cfg, nil
	}

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seen := map[string]struct{}{}
	for idx, name := range c.Board.Columns {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("board.columns[%d] is blank", idx)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("board.columns[%d] is duplicated: %s", idx, name)
		}
		seen[key] = struct{}{}
	}

	if _, err := c.TickInterval(); err != nil {
		return err
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when enabled")
	}

	return nil
}

// TickInterval parses ui.tick_interval.
func (c Config) TickInterval() (time.Duration, error) {
	raw := strings.TrimSpace(c.UI.TickInterval)
	if raw == "" {
		return DefaultTickInterval, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid ui.tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ui.tick_interval must be > 0, got %s", d)
	}
	return d, nil
}

// LogLevel returns the parsed logging.level, defaulting to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Template is the commented starter file written by `kanboard init-config`.
func Template(cfg Config) ([]byte, error) {
	body, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	header := "# kanboard configuration\n# Board settings apply only when a new board is created.\n\n"
	return append([]byte(header), body...), nil
}
