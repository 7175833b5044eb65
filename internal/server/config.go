package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/rentcheck/internal/config"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the dashboard API server. Size and TTL are kept
// as written; read the parsed values through UploadSizeBytes and CacheTTLDuration.
type Config struct {
	// Address is the host:port to listen on.
	Address string `yaml:"address"`
	// MaxUploadSize caps POST /api/ledger bodies. Plain bytes or a K, M or G
	// suffix ("256K"); an optional trailing B is accepted.
	MaxUploadSize string `yaml:"maxUploadSize"`
	// CacheTTL is how long a computed screen is reused for the same query and
	// reference date, as a Go duration ("15m", "30s"). Zero disables reuse.
	CacheTTL string `yaml:"cacheTTL"`
	// Logging overrides the ledger configuration's logging block while serving.
	Logging config.LoggingConfig `yaml:"logging"`

	uploadSizeBytes int64
	cacheTTL        time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		CacheTTL:        constants.DefaultCacheTTL,
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		cacheTTL:        defaultCacheTTL(),
	}
}

// LoadConfig reads the server settings at path. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("server config %s: %w", path, err)
	}
	return cfg, nil
}

// UploadSizeBytes is the ledger upload limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetMaxUploadSize replaces the upload limit with value, written the same way
// as the maxUploadSize field.
func (c *Config) SetMaxUploadSize(value string) error {
	size, err := parseUploadSize(value)
	if err != nil {
		return err
	}
	c.MaxUploadSize = strings.TrimSpace(value)
	c.uploadSizeBytes = size
	return nil
}

// CacheTTLDuration is the parsed cacheTTL.
func (c *Config) CacheTTLDuration() time.Duration {
	return c.cacheTTL
}

func defaultCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(constants.DefaultCacheTTL)
	return ttl
}

// normalize fills blank fields with defaults and parses the rest, reporting
// every bad field at once.
func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	var err error
	if ttl, ttlErr := parseCacheTTL(c.CacheTTL); ttlErr != nil {
		err = multierr.Append(err, ttlErr)
	} else {
		c.cacheTTL = ttl
	}
	if size, sizeErr := parseUploadSize(c.MaxUploadSize); sizeErr != nil {
		err = multierr.Append(err, sizeErr)
	} else {
		c.uploadSizeBytes = size
	}
	return err
}

func parseCacheTTL(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultCacheTTL(), nil
	}
	ttl, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid cacheTTL %q: %w", value, err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("invalid cacheTTL %q: negative duration", value)
	}
	return ttl, nil
}

// parseUploadSize is ParseSize with zero mapped to the default limit.
func parseUploadSize(value string) (int64, error) {
	size, err := ParseSize(value)
	if err != nil {
		return 0, fmt.Errorf("invalid maxUploadSize: %w", err)
	}
	if size == 0 {
		return constants.DefaultMaxUploadSizeBytes, nil
	}
	return size, nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a byte count such as "512", "256K" or "10MB" into bytes.
// Units are binary and case-insensitive; a blank value is the default upload limit.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	number := strings.TrimRightFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	unit := strings.TrimSpace(trimmed[len(number):])
	number = strings.TrimSpace(number)
	if number == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}
	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size value %q: negative", value)
	}
	if n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
