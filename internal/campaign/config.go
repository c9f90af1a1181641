// Package campaign loads the fuzzing campaign configuration: where the corpus
// lives, how the process is limited, and how each harness variant is tuned.
package campaign

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	LogLevel   string                     `json:"log_level"`
	CorpusDir  string                     `json:"corpus_dir"`
	RSSLimitMB *int                       `json:"rss_limit_mb,omitempty"`
	Variants   map[string]VariantOverride `json:"variants,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	CorpusDirAbs string `json:"-"` // Absolute path to the corpus directory

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// VariantOverride tunes one built-in variant. Nil fields keep the built-in
// value. An empty Disable list enables every feature.
type VariantOverride struct {
	Policy  string    `json:"policy,omitempty"`
	Count   *int      `json:"count,omitempty"`
	Length  *int      `json:"length,omitempty"`
	Disable *[]string `json:"disable,omitempty"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultRSSLimitMB is the address-space limit applied by replay.
const DefaultRSSLimitMB = 2048

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	limit := DefaultRSSLimitMB

	return Config{
		LogLevel:   "info",
		CorpusDir:  filepath.Join("internal", "harness", "testdata", "fuzz"),
		RSSLimitMB: &limit,
	}
}

// RSSLimit returns the configured limit in megabytes; 0 means unlimited.
func (c Config) RSSLimit() int {
	if c.RSSLimitMB == nil {
		return DefaultRSSLimitMB
	}

	return *c.RSSLimitMB
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".rexfuzz.json"

// LogLevelEnv overrides log_level from every config file.
const LogLevelEnv = "REXFUZZ_LOG_LEVEL"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/rexfuzz/config.json if set, otherwise
// ~/.config/rexfuzz/config.json. Returns empty string if home directory cannot
// be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "rexfuzz", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "rexfuzz", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/rexfuzz/config.json or $XDG_CONFIG_HOME/rexfuzz/config.json)
// 3. Project config file at default location (.rexfuzz.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. Environment overrides ($REXFUZZ_LOG_LEVEL).
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if level := input.Env[LogLevelEnv]; level != "" {
		cfg.LogLevel = level
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, validateErr)
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.CorpusDir) {
		cfg.CorpusDirAbs = cfg.CorpusDir
	} else {
		cfg.CorpusDirAbs = filepath.Join(workDir, cfg.CorpusDir)
	}

	return cfg, nil
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["corpus_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrCorpusDirEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.rexfuzz.json) or an
// explicit config file. Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["corpus_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrCorpusDirEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, a map of explicitly empty fields,
// whether file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["corpus_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["corpus_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.CorpusDir != "" {
		base.CorpusDir = overlay.CorpusDir
	}

	if overlay.RSSLimitMB != nil {
		base.RSSLimitMB = overlay.RSSLimitMB
	}

	if len(overlay.Variants) > 0 {
		merged := make(map[string]VariantOverride, len(base.Variants)+len(overlay.Variants))
		for name, o := range base.Variants {
			merged[name] = o
		}

		for name, o := range overlay.Variants {
			merged[name] = mergeOverride(merged[name], o)
		}

		base.Variants = merged
	}

	return base
}

func mergeOverride(base, overlay VariantOverride) VariantOverride {
	if overlay.Policy != "" {
		base.Policy = overlay.Policy
	}

	if overlay.Count != nil {
		base.Count = overlay.Count
	}

	if overlay.Length != nil {
		base.Length = overlay.Length
	}

	if overlay.Disable != nil {
		base.Disable = overlay.Disable
	}

	return base
}

var logLevels = []string{"debug", "info", "warn", "error"}

func validateConfig(cfg Config) error {
	if cfg.CorpusDir == "" {
		return ErrCorpusDirEmpty
	}

	if !slices.Contains(logLevels, cfg.LogLevel) {
		return fmt.Errorf("%w, got %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	if cfg.RSSLimit() < 0 {
		return ErrNegativeRSSLimit
	}

	_, err := Resolve(cfg)

	return err
}

// FormatConfig renders the serializable part of cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(b), nil
}
