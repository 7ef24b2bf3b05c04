package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Corpus selects the text files to chunk.
type Corpus struct {
	TextDir  string `toml:"text_dir"`
	Language string `toml:"language"`
}

// Planner contains chunk allocation settings.
type Planner struct {
	// Parallelism caps the chunk count of any single file. 0 means runtime.NumCPU().
	Parallelism int `toml:"parallelism"`
	// MaxUnitBytes is the per-chunk size below which files are not split further.
	MaxUnitBytes int64 `toml:"max_unit_bytes"`
}

// Pipeline contains worker pool settings.
type Pipeline struct {
	Workers      int `toml:"workers"`
	CacheEntries int `toml:"cache_entries"`
}

// Storage contains run store settings.
type Storage struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for corpuschunk.
type Config struct {
	Corpus   Corpus   `toml:"corpus"`
	Planner  Planner  `toml:"planner"`
	Pipeline Pipeline `toml:"pipeline"`
	Storage  Storage  `toml:"storage"`
	Logging  Logging  `toml:"logging"`
}

// Environment variables that override file values.
const (
	EnvTextDir     = "CORPUSCHUNK_TEXT_DIR"
	EnvLanguage    = "CORPUSCHUNK_LANGUAGE"
	EnvParallelism = "CORPUSCHUNK_PARALLELISM"
	EnvWorkers     = "CORPUSCHUNK_WORKERS"
	EnvDBPath      = "CORPUSCHUNK_DB_PATH"
	EnvLogLevel    = "CORPUSCHUNK_LOG_LEVEL"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/corpuschunk/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after the file. It returns the config, the resolved
// path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("corpuschunk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv(EnvTextDir); ok {
		c.Corpus.TextDir = v
	}
	if v, ok := lookupEnv(EnvLanguage); ok {
		c.Corpus.Language = v
	}
	if v, ok := lookupEnv(EnvDBPath); ok {
		c.Storage.DBPath = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvParallelism); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParallelism, err)
		}
		c.Planner.Parallelism = n
	}
	if v, ok := lookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Pipeline.Workers = n
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (c *Config) normalize() error {
	var err error
	if c.Corpus.TextDir, err = expandPath(c.Corpus.TextDir); err != nil {
		return err
	}
	if c.Storage.DBPath, err = expandPath(c.Storage.DBPath); err != nil {
		return err
	}
	c.Corpus.Language = strings.TrimSpace(c.Corpus.Language)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Corpus.TextDir) == "" {
		return errors.New("corpus.text_dir must be set")
	}
	if strings.ContainsAny(c.Corpus.Language, `/\`) || c.Corpus.Language == "." || c.Corpus.Language == ".." {
		return fmt.Errorf("corpus.language %q must be a single directory name", c.Corpus.Language)
	}
	if c.Planner.Parallelism < 0 {
		return errors.New("planner.parallelism must be >= 0")
	}
	if c.Planner.MaxUnitBytes <= 0 {
		return errors.New("planner.max_unit_bytes must be positive")
	}
	if c.Pipeline.Workers < 0 {
		return errors.New("pipeline.workers must be >= 0")
	}
	if c.Pipeline.CacheEntries < 0 {
		return errors.New("pipeline.cache_entries must be >= 0")
	}
	if c.Storage.Enabled && strings.TrimSpace(c.Storage.DBPath) == "" {
		return errors.New("storage.db_path must be set when storage is enabled")
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" || pathValue == ":memory:" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
