package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "pembukuan.yaml"

// Profile names.
const (
	ProfileUMKM  = "umkm"
	ProfileAdmin = "admin"
)

// Environment variables that override the file.
const (
	EnvUMKMURL  = "PEMBUKUAN_UMKM_URL"
	EnvAdminURL = "PEMBUKUAN_ADMIN_URL"
	EnvStateDir = "PEMBUKUAN_STATE_DIR"
	EnvPageSize = "PEMBUKUAN_PAGE_SIZE"
)

// Config represents the top-level pembukuan.yaml configuration.
type Config struct {
	Profiles ProfilesConfig `yaml:"profiles"`
	StateDir string         `yaml:"state_dir,omitempty"`
	Paging   PagingConfig   `yaml:"paging"`
	Reports  ReportsConfig  `yaml:"reports"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ProfilesConfig holds one API endpoint per role.
type ProfilesConfig struct {
	UMKM  Profile `yaml:"umkm"`
	Admin Profile `yaml:"admin"`
}

// Profile is one Ledger API endpoint.
type Profile struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PagingConfig controls list pagination.
type PagingConfig struct {
	PageSize int `yaml:"page_size"`
}

// ReportsConfig controls report aggregation.
type ReportsConfig struct {
	DuplicateMonths string `yaml:"duplicate_months"` // "reject" or "last_wins"
}

// CacheConfig controls client-side caching.
type CacheConfig struct {
	// AccountsTTL is how long a fetched chart of accounts is reused from
	// the local state database. Zero disables the cache.
	AccountsTTL time.Duration `yaml:"accounts_ttl"`
}

// Default returns a Config pointing at the local development servers.
func Default() *Config {
	return &Config{
		Profiles: ProfilesConfig{
			UMKM:  Profile{BaseURL: "http://127.0.0.1:8001/api", Timeout: 30 * time.Second},
			Admin: Profile{BaseURL: "http://127.0.0.1:8000/api", Timeout: 30 * time.Second},
		},
		Paging:  PagingConfig{PageSize: 10},
		Reports: ReportsConfig{DuplicateMonths: "reject"},
		Cache:   CacheConfig{AccountsTTL: 5 * time.Minute},
	}
}

// Load reads a pembukuan.yaml file from disk over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadEnv loads a .env file into the process environment. An empty path
// tries ./.env and ignores only its absence; an explicit path must exist.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from PEMBUKUAN_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvUMKMURL); v != "" {
		c.Profiles.UMKM.BaseURL = v
	}
	if v := os.Getenv(EnvAdminURL); v != "" {
		c.Profiles.Admin.BaseURL = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", EnvPageSize, v)
		}
		c.Paging.PageSize = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	for name, p := range map[string]Profile{ProfileUMKM: c.Profiles.UMKM, ProfileAdmin: c.Profiles.Admin} {
		u, err := url.Parse(p.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("profiles.%s.base_url %q is not an http(s) URL", name, p.BaseURL))
		}
		if p.Timeout < 0 {
			problems = append(problems, fmt.Sprintf("profiles.%s.timeout must not be negative", name))
		}
	}
	if c.Paging.PageSize < 1 {
		problems = append(problems, "paging.page_size must be at least 1")
	}
	switch c.Reports.DuplicateMonths {
	case "", "reject", "last_wins":
	default:
		problems = append(problems, fmt.Sprintf("reports.duplicate_months %q must be reject or last_wins", c.Reports.DuplicateMonths))
	}
	if c.Cache.AccountsTTL < 0 {
		problems = append(problems, "cache.accounts_ttl must not be negative")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (Profile, error) {
	switch name {
	case ProfileUMKM:
		return c.Profiles.UMKM, nil
	case ProfileAdmin:
		return c.Profiles.Admin, nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want %s or %s)", name, ProfileUMKM, ProfileAdmin)
	}
}

// ResolveStateDir returns the directory for local state: StateDir when
// set, otherwise pembukuan under the user config directory.
func (c *Config) ResolveStateDir() (string, error) {
	if c.StateDir != "" {
		return c.StateDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "pembukuan"), nil
}
