// Package config loads patchcheck settings. Configuration is read-only: the
// program never writes settings back.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"patchcheck/internal/catalog"
	apperrors "patchcheck/internal/errors"
)

const (
	KeySkipRuntimeCheck = "skip-runtime-check"
	KeyDebug            = "debug"
	KeyConcurrency      = "concurrency"

	KeyGamesRoot  = "games.root"
	KeyGamesExtra = "games.extra"

	KeyFeedTimeout   = "feed.timeout"
	KeyFeedUserAgent = "feed.user-agent"

	KeyOutputFormat  = "output.format"
	KeyOutputJSON    = "output.json"
	KeyOutputSummary = "output.summary"
)

const (
	// DirName is the per-user and per-project config directory name.
	DirName   = ".patchcheck"
	fileName  = "config.yaml"
	envPrefix = "PC"
)

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	v, err := getViper()
	if err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	for k, val := range overrides {
		v.Set(k, val)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetInt(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetDuration(key)
}

// ExtraGames decodes user-supplied game entries from games.extra.
// Entries without a name are rejected.
func ExtraGames() ([]catalog.Game, error) {
	v, err := getViper()
	if err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()

	var games []catalog.Game
	if err := v.UnmarshalKey(KeyGamesExtra, &games); err != nil {
		return nil, apperrors.New(apperrors.CodeConfigurationError, fmt.Sprintf("decode %s: %v", KeyGamesExtra, err), err)
	}
	for i, g := range games {
		if strings.TrimSpace(g.Name) == "" {
			return nil, apperrors.New(apperrors.CodeConfigurationError, fmt.Sprintf("%s[%d]: name is required", KeyGamesExtra, i), nil)
		}
	}
	return games, nil
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "load user config", fmt.Errorf("load user config: %w", err))
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "load project config", fmt.Errorf("load project config: %w", err))
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, DirName, fileName), nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName, fileName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Feed timeout defaults to zero: the feed request is not bounded unless
// a timeout is configured.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySkipRuntimeCheck, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeyGamesRoot, catalog.DefaultRoot)
	v.SetDefault(KeyFeedTimeout, time.Duration(0))
	v.SetDefault(KeyFeedUserAgent, "")
	v.SetDefault(KeyOutputFormat, "rich")
	v.SetDefault(KeyOutputJSON, false)
	v.SetDefault(KeyOutputSummary, false)
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
//
//nolint:unused // Used in config_test.go
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	return reset
}
