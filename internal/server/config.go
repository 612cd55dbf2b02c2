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

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/dcf-valuation/internal/config"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

// DatabaseURLEnv is consulted when database.url is not set.
const DatabaseURLEnv = "DATABASE_URL"

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address          string               `yaml:"address"`
	MaxRequestSize   string               `yaml:"maxRequestSize"`
	Logging          config.LoggingConfig `yaml:"logging"`
	Database         DatabaseConfig       `yaml:"database"`
	Store            StoreConfig          `yaml:"store"`
	History          HistoryConfig        `yaml:"history"`
	requestSizeBytes int64
}

// DatabaseConfig selects the Postgres inputs store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StoreConfig locates the YAML inputs store used without a database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// HistoryConfig configures the price-history client and its cache.
type HistoryConfig struct {
	BaseURL        string        `yaml:"baseURL"`
	Timeout        time.Duration `yaml:"timeout"`
	LookbackMonths int           `yaml:"lookbackMonths"`
	CacheSize      int           `yaml:"cacheSize"`
	CacheTTL       time.Duration `yaml:"cacheTTL"`
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:        constants.DefaultServerAddress,
		MaxRequestSize: fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes),
		Logging:        config.LoggingConfig{},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequestSizeBytes returns the configured request size limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSizeBytes
}

// SetRequestSizeBytes overrides the configured request size limit.
func (c *Config) SetRequestSizeBytes(size int64) {
	if size > 0 {
		c.requestSizeBytes = size
		c.MaxRequestSize = fmt.Sprintf("%d", size)
	}
}

// DatabaseURL returns database.url, falling back to $DATABASE_URL. An empty
// result means the file store is used.
func (c *Config) DatabaseURL() string {
	if url := strings.TrimSpace(c.Database.URL); url != "" {
		return url
	}
	return strings.TrimSpace(os.Getenv(DatabaseURLEnv))
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Store.Path == "" {
		c.Store.Path = constants.DefaultStoreFile
	}
	if c.History.BaseURL == "" {
		c.History.BaseURL = constants.DefaultHistoryBaseURL
	}
	if c.History.Timeout <= 0 {
		c.History.Timeout = constants.DefaultHistoryTimeout
	}
	if c.History.LookbackMonths <= 0 {
		c.History.LookbackMonths = constants.DefaultHistoryLookbackMonths
	}
	if c.History.CacheSize <= 0 {
		c.History.CacheSize = constants.DefaultHistoryCacheSize
	}
	if c.History.CacheTTL <= 0 {
		c.History.CacheTTL = constants.DefaultHistoryCacheTTL
	}

	sizeStr := strings.TrimSpace(c.MaxRequestSize)
	if sizeStr == "" {
		c.requestSizeBytes = constants.DefaultMaxRequestSizeBytes
		c.MaxRequestSize = fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxRequestSizeBytes
	}
	c.requestSizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
