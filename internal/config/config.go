package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher kinds.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// Storage kinds.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// DirName is the name of the per-user and per-repo config directory.
const DirName = ".linkgrab"

// Config holds application configuration.
type Config struct {
	// Fetcher selects the network boundary: "http" (default) or "browser".
	// The browser fetcher renders the page in headless Chrome before extraction.
	Fetcher string `json:"fetcher,omitempty"`

	// Storage selects the session persistence backend: "sqlite" (default) or "memory".
	// Memory storage does not survive process restarts.
	Storage string `json:"storage,omitempty"`

	// UserAgent is sent with every fetch.
	UserAgent string `json:"user_agent,omitempty"`

	// FetchTimeoutSeconds bounds a single fetch. 0 means no timeout.
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds,omitempty"`

	// MaxBodyBytes caps how much of a response body is read. 0 means unlimited.
	MaxBodyBytes int64 `json:"max_body_bytes,omitempty"`

	// BrowserWaitMS is an extra settle delay after the page is ready (browser fetcher only).
	BrowserWaitMS int `json:"browser_wait_ms,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Fetcher:   FetcherHTTP,
		Storage:   StorageSQLite,
		UserAgent: "linkgrab/1.0",
	}
}

// FetchTimeout returns the configured fetch timeout (0 = none).
func (c *Config) FetchTimeout() time.Duration {
	if c == nil || c.FetchTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.linkgrab.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.linkgrab) and repo (.linkgrab) directories.
// Repo config is found by walking upward from startDir to find the nearest .linkgrab/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .linkgrab/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Fetcher:             firstString(overlay.Fetcher, base.Fetcher),
		Storage:             firstString(overlay.Storage, base.Storage),
		UserAgent:           firstString(overlay.UserAgent, base.UserAgent),
		FetchTimeoutSeconds: firstInt(overlay.FetchTimeoutSeconds, base.FetchTimeoutSeconds),
		BrowserWaitMS:       firstInt(overlay.BrowserWaitMS, base.BrowserWaitMS),
		DBMaxOpenConns:      firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:      firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.MaxBodyBytes = overlay.MaxBodyBytes
	if result.MaxBodyBytes == 0 {
		result.MaxBodyBytes = base.MaxBodyBytes
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
