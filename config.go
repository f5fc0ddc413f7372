// config.go: engine configuration, YAML loading, and the small parsing /
// filesystem helpers the rotation layer depends on.
//
// Grounded on the teacher's config.go (ParseSize, ParseDuration,
// SanitizeFilename, ValidatePathLength, GetDefaultFileMode,
// RetryFileOperation), generalized from lethe's byte-size-only
// LoggerConfig to the KiB/MiB split the original C++ flags use
// (FLAGS_max_log_size in KiB for the file manager, FLAGS_max_log_size in
// MiB for the async pipeline).

package halog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures an Engine end to end: where files live, how big they
// grow before rotating, how long the pipeline may buffer before a forced
// flush, and which codec compresses pipeline buffers before they hit disk.
type Config struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`

	MinLevel     Level  `yaml:"-"`
	MinLevelName string `yaml:"min_level"`

	MaxPipelineSizeMB int           `yaml:"max_pipeline_size_mb"`
	MaxFileSizeKB     int64         `yaml:"max_file_size_kb"`
	MaxFiles          int           `yaml:"max_files"`
	FlushInterval     time.Duration `yaml:"-"`
	FlushIntervalText string        `yaml:"flush_interval"`

	Stderr          bool `yaml:"stderr"`
	CompressRotated bool `yaml:"compress_rotated"`
	Checksum        bool `yaml:"checksum"`

	Codec Codec `yaml:"-"`

	FileMode os.FileMode `yaml:"-"`
}

// DefaultConfig returns the baseline configuration: info level, 10 MiB
// pipeline threshold, 1 MiB (1024 KiB) file rotation, 10 retained files, a
// 3 second flush interval, stderr mirroring on, no compression.
func DefaultConfig() Config {
	return Config{
		Dir:               "./log/",
		Prefix:            "app",
		MinLevel:          LevelInfo,
		MaxPipelineSizeMB: 10,
		MaxFileSizeKB:     1024,
		MaxFiles:          10,
		FlushInterval:     3 * time.Second,
		Stderr:            true,
		Codec:             NoopCodec{},
		FileMode:          GetDefaultFileMode(),
	}
}

// LoadConfigFile reads a YAML configuration file and overlays it onto
// DefaultConfig.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("halog: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("halog: parse config: %w", err)
	}

	if cfg.MinLevelName != "" {
		lvl, err := ParseLevel(cfg.MinLevelName)
		if err != nil {
			return cfg, err
		}
		cfg.MinLevel = lvl
	}
	if cfg.FlushIntervalText != "" {
		d, err := ParseDuration(cfg.FlushIntervalText)
		if err != nil {
			return cfg, err
		}
		cfg.FlushInterval = d
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = GetDefaultFileMode()
	}
	if cfg.Codec == nil {
		if cfg.CompressRotated {
			cfg.Codec = NewZstdCodec()
		} else {
			cfg.Codec = NoopCodec{}
		}
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("halog: Prefix must not be empty")
	}
	if err := ValidatePathLength(c.Dir); err != nil {
		return err
	}
	if c.MaxFileSizeKB <= 0 {
		return fmt.Errorf("halog: MaxFileSizeKB must be positive")
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("halog: MaxFiles must be positive")
	}
	if c.MaxPipelineSizeMB <= 0 {
		return fmt.Errorf("halog: MaxPipelineSizeMB must be positive")
	}
	return nil
}

// ParseSize parses sizes like "10KB", "4MB", "1GB", "2TB" (case
// insensitive, no space) into bytes. A bare number is treated as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("halog: empty size")
	}
	mult := int64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "TB"):
		mult = 1 << 40
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "GB"):
		mult = 1 << 30
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "MB"):
		mult = 1 << 20
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "KB"):
		mult = 1 << 10
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "B"):
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("halog: invalid size %q: %w", s, err)
	}
	return int64(n * float64(mult)), nil
}

// ParseDuration parses a Go duration string, with extra "d" (day), "w"
// (week) and "y" (365 day year) suffixes the stdlib parser doesn't accept.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("halog: empty duration")
	}
	switch suffix := s[len(s)-1]; suffix {
	case 'd', 'D':
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("halog: invalid duration %q: %w", s, err)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	case 'w', 'W':
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("halog: invalid duration %q: %w", s, err)
		}
		return time.Duration(n * float64(7*24*time.Hour)), nil
	case 'y', 'Y':
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("halog: invalid duration %q: %w", s, err)
		}
		return time.Duration(n * float64(365*24*time.Hour)), nil
	}
	return time.ParseDuration(s)
}

// SanitizeFilename replaces path separators with '_' and removes null
// bytes from a user-supplied prefix, so a malicious or malformed Config.Prefix cannot
// escape the log directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\x00", "")
	return strings.TrimSpace(name)
}

// ValidatePathLength rejects paths unreasonably long for common
// filesystems.
func ValidatePathLength(path string) error {
	const maxPathLen = 4096
	if len(path) > maxPathLen {
		return fmt.Errorf("halog: path too long (%d bytes, max %d)", len(path), maxPathLen)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("halog: invalid path %q: %w", path, err)
	}
	if len(abs) > maxPathLen {
		return fmt.Errorf("halog: resolved path too long (%d bytes, max %d)", len(abs), maxPathLen)
	}
	return nil
}

// GetDefaultFileMode returns the permission bits new log files are created
// with.
func GetDefaultFileMode() os.FileMode {
	return 0o644
}

// RetryFileOperation retries a filesystem operation up to attempts times,
// sleeping a fixed delay between attempts, for transient errors (e.g. a rotation racing an
// antivirus scanner's file lock on Windows, or a brief ENOSPC blip).
func RetryFileOperation(attempts int, delay time.Duration, op func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := op(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("halog: operation failed after %d attempts: %w", attempts, lastErr)
}
