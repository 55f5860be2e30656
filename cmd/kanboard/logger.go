package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/platform"
)

// runtimeLogger fans log events to a styled console sink and an optional
// dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger builds the sinks for the resolved logging config. The file
// sink only exists in dev mode.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	console := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{console},
		consoleSink:    console,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// logfmt keeps the file greppable; the console stays styled.
	fileSink := charmLog.NewWithOptions(file, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileSink)
	logger.closeFile = file.Close
	logger.devLog = path
	return logger, nil
}

// DevLogPath returns the active dev log file, or "".
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the dev-file sink, if any.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled mutes or unmutes the console sink. The TUI mutes it while
// the alternate screen is active.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) consoleActive() bool {
	return l != nil && l.consoleEnabled
}

func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if sink == l.consoleSink && !l.consoleEnabled {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.log(charmLog.DebugLevel, msg, keyvals...)
}

func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.log(charmLog.InfoLevel, msg, keyvals...)
}

func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.log(charmLog.WarnLevel, msg, keyvals...)
}

func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.log(charmLog.ErrorLevel, msg, keyvals...)
}

// devLogFilePath anchors a relative dir at the nearest workspace root above
// the working directory.
func devLogFilePath(dir, appName string, day time.Time) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join(".kanboard", "log")
	}
	workspace := ""
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		workspace = workspaceRootFrom(cwd)
	}
	return filepath.Clean(platform.DevLogPath(workspace, dir, sanitizeLogFileStem(appName), day)), nil
}

// workspaceRootFrom walks up from start to the first directory holding a
// go.mod or .git marker, or returns start.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	for dir := start; ; {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem turns an app name into a safe file name segment.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
