package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
	ReportDir string `toml:"report_dir"`
}

// Scan contains directory traversal and probing configuration.
type Scan struct {
	// Extensions is the video file allow-list, without leading dots.
	Extensions []string `toml:"extensions"`
	// Workers bounds concurrent ffprobe invocations. 0 selects NumCPU.
	Workers int `toml:"workers"`
	// ProbeTimeout is the per-file ffprobe timeout in seconds.
	ProbeTimeout int `toml:"probe_timeout"`
	// CacheEnabled controls the persistent probe result cache.
	CacheEnabled bool `toml:"cache_enabled"`
}

// Similarity contains the duplicate matching tunables. Threshold and the
// signal weights are deliberately configuration, not constants: they are
// validated empirically, not derived.
type Similarity struct {
	// Threshold is the combined score two records must reach to be grouped.
	Threshold float64 `toml:"threshold"`
	// DurationAbsTolerance is the absolute drift in seconds treated as identical.
	DurationAbsTolerance float64 `toml:"duration_abs_tolerance"`
	// DurationRelTolerance is the relative drift treated as identical for
	// long-form content (0.02 = 2%).
	DurationRelTolerance float64 `toml:"duration_rel_tolerance"`
	// DurationMaxDrift is the drift in seconds beyond the tolerance at which
	// the duration signal reaches zero.
	DurationMaxDrift float64 `toml:"duration_max_drift"`
	DurationWeight   float64 `toml:"duration_weight"`
	TitleWeight      float64 `toml:"title_weight"`
	// PlausibilityWeight rewards pairs whose resolution and bitrate ordering agree.
	PlausibilityWeight float64 `toml:"plausibility_weight"`
	// DurationFloor and TitleFloor are the per-signal minimums a pair must
	// clear regardless of the combined score.
	DurationFloor float64 `toml:"duration_floor"`
	TitleFloor    float64 `toml:"title_floor"`
}

// Execution contains action executor configuration.
type Execution struct {
	// Mode is the default action mode: dry-run, move, or delete.
	Mode string `toml:"mode"`
	// MoveDest is the destination root for move mode.
	MoveDest string `toml:"move_dest"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidsift.
//
// Configuration sections by subsystem:
//   - Paths: log, cache, and report directories
//   - Scan: extension allow-list and probe worker pool
//   - Similarity: duplicate matching threshold and signal weights
//   - Execution: default action mode and move destination
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Scan       Scan       `toml:"scan"`
	Similarity Similarity `toml:"similarity"`
	Execution  Execution  `toml:"execution"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/vidsift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
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
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
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
	if path == "" {
		path = strings.TrimSpace(os.Getenv("VIDSIFT_CONFIG"))
	}
	if path != "" {
		expanded, err := ExpandPath(path)
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

	projectPath, err := filepath.Abs("vidsift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories vidsift writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir, c.Paths.ReportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable name used for metadata extraction.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// WriteSample writes the embedded sample configuration to the given path.
// Fails if the file already exists.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ and resolves the path to absolute form.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
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
