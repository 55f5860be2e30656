package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "kanboard"

const (
	configFileName = "config.toml"
	devSuffix      = "-dev"
)

// Paths holds the resolved per-user locations.
type Paths struct {
	ConfigDir  string
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the app directory name; DevMode appends "-dev" so a
// development build never touches the real board.
type Options struct {
	AppName string
	DevMode bool
}

// baseOverrides lists the env vars that replace the config and data bases.
// Operating systems without an entry keep the Go defaults.
var baseOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for DefaultAppName.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the running OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configBase, dataBase, err := userBaseDirs(runtime.GOOS)
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{}
	if keys, ok := baseOverrides[runtime.GOOS]; ok {
		env[keys.config] = os.Getenv(keys.config)
		env[keys.data] = os.Getenv(keys.data)
	}
	return PathsFor(runtime.GOOS, env, configBase, dataBase, appDirName(opts))
}

func appDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += devSuffix
	}
	return name
}

// userBaseDirs returns the OS defaults before env overrides. Linux data lives
// under ~/.local/share rather than the config dir.
func userBaseDirs(goos string) (string, string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("user config dir: %w", err)
	}
	if goos != "linux" {
		return configBase, configBase, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("user home dir: %w", err)
	}
	return configBase, filepath.Join(home, ".local", "share"), nil
}

// PathsFor lays out the app directories for goos given explicit base dirs and
// environment, so every platform can be tested from any host.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if keys, ok := baseOverrides[goos]; ok {
		configBase = firstNonEmpty(env[keys.config], configBase)
		dataBase = firstNonEmpty(env[keys.data], dataBase)
	}

	configDir := filepath.Join(configBase, appName)
	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigDir:  configDir,
		ConfigPath: filepath.Join(configDir, configFileName),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// DevLogPath returns the daily dev log file under dir. A relative dir is
// resolved against workspace.
func DevLogPath(workspace, dir, appName string, day time.Time) string {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workspace, dir)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", appName, day.Format("20060102")))
}
