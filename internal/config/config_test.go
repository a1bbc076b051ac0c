package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Profiles.UMKM.BaseURL = "https://umkm.example.id/api"
	cfg.StateDir = "/var/lib/pembukuan"
	cfg.Reports.DuplicateMonths = "last_wins"
	cfg.Cache.AccountsTTL = 90 * time.Second

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://127.0.0.1:8001/api", cfg.Profiles.UMKM.BaseURL)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.Profiles.Admin.BaseURL)
	assert.Equal(t, 10, cfg.Paging.PageSize)
	assert.Equal(t, "reject", cfg.Reports.DuplicateMonths)
	assert.Equal(t, 5*time.Minute, cfg.Cache.AccountsTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("paging:\n  page_size: 25\ncache:\n  accounts_ttl: 30s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Paging.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Cache.AccountsTTL)
	assert.Equal(t, "http://127.0.0.1:8001/api", cfg.Profiles.UMKM.BaseURL)
}

func TestLoadNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("paging: [oops"), 0o644))
	_, err := LoadOrDefault(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "base_url: http://127.0.0.1:8001/api")
	assert.Contains(t, contents, "page_size: 10")
	assert.Contains(t, contents, "duplicate_months: reject")
	assert.Contains(t, contents, "accounts_ttl: 5m0s")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvUMKMURL, "https://umkm.test/api")
	t.Setenv(EnvAdminURL, "https://admin.test/api")
	t.Setenv(EnvStateDir, "/tmp/state")
	t.Setenv(EnvPageSize, "50")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "https://umkm.test/api", cfg.Profiles.UMKM.BaseURL)
	assert.Equal(t, "https://admin.test/api", cfg.Profiles.Admin.BaseURL)
	assert.Equal(t, "/tmp/state", cfg.StateDir)
	assert.Equal(t, 50, cfg.Paging.PageSize)

	t.Setenv(EnvPageSize, "ten")
	assert.Error(t, Default().ApplyEnv())
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PEMBUKUAN_STATE_DIR=/from/dotenv\n"), 0o644))
	t.Setenv(EnvStateDir, "")
	os.Unsetenv(EnvStateDir)

	require.NoError(t, LoadEnv(path))
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/from/dotenv", cfg.StateDir)

	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadEnv_Default(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	assert.NoError(t, LoadEnv(""), "absent ./.env is not an error")

	t.Setenv(EnvStateDir, "")
	os.Unsetenv(EnvStateDir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PEMBUKUAN_STATE_DIR=/from/cwd\n"), 0o644))
	require.NoError(t, LoadEnv(""))
	assert.Equal(t, "/from/cwd", os.Getenv(EnvStateDir))
}

func TestLoadEnv_DefaultUnreadable(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.Mkdir(".env", 0o755))

	err := LoadEnv("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading env file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Profiles.Admin.BaseURL = "ftp://nope"
	cfg.Paging.PageSize = 0
	cfg.Reports.DuplicateMonths = "first_wins"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiles.admin.base_url")
	assert.Contains(t, err.Error(), "paging.page_size")
	assert.Contains(t, err.Error(), "reports.duplicate_months")
	assert.NotContains(t, err.Error(), "profiles.umkm")
}

func TestProfile(t *testing.T) {
	cfg := Default()
	p, err := cfg.Profile(ProfileAdmin)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles.Admin, p)

	_, err = cfg.Profile("owner")
	assert.Error(t, err)
}

func TestResolveStateDir(t *testing.T) {
	cfg := Default()
	cfg.StateDir = "/explicit"
	dir, err := cfg.ResolveStateDir()
	require.NoError(t, err)
	assert.Equal(t, "/explicit", dir)
}

// chdir switches the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
