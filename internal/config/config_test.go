package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sercha-directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.IndexTTL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.UsesDevSecret())

	profiles := cfg.Profiles()
	require.Len(t, profiles, 2)
	assert.Equal(t, domain.DefaultProfiles()[domain.ContentTypeArtist], profiles[domain.ContentTypeArtist])
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
cache:
  backend: bolt
  page_ttl: 15m
bolt:
  path: /tmp/cache.db
directories:
  artist:
    label: musicians
    per_page: 12
  venue:
    letters: "A,B,C"
    locked_taxonomy: "region:north"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendBolt, cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.PageTTL)

	profiles := cfg.Profiles()
	require.Len(t, profiles, 3)

	artist := profiles[domain.ContentTypeArtist]
	assert.Equal(t, "musicians", artist.Label)
	assert.Equal(t, 12, artist.PerPage)
	assert.Equal(t, "/artists/", artist.BasePath, "untouched fields keep the built-in value")
	assert.Equal(t, []string{"artist_category"}, artist.BadgeTaxonomies)

	venue := profiles["venue"]
	assert.Equal(t, domain.ContentType("venue"), venue.ContentType)
	assert.Equal(t, "venues", venue.Label)
	assert.Equal(t, "/venues/", venue.BasePath)
	assert.Equal(t, "A,B,C", venue.Letters)
	assert.Equal(t, "region:north", venue.LockedTaxonomy)
	assert.Equal(t, domain.DefaultPerPage, venue.PerPage)
	assert.Equal(t, "title", venue.NameKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERCHA_DIR_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("SERCHA_DIR_CACHE_BACKEND", "postgres")
	t.Setenv("SERCHA_DIR_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("SERCHA_DIR_DIRECTORIES_ORGANIZATION_PER_PAGE", "48")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, BackendPostgres, cfg.Cache.Backend)
	assert.False(t, cfg.UsesDevSecret())
	assert.Equal(t, 48, cfg.Profiles()[domain.ContentTypeOrganization].PerPage)
}

func TestLoad_InvalidBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "cache:\n  backend: memcached\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:      ServerConfig{Port: 8080},
			Cache:       CacheConfig{Backend: BackendRedis},
			Directories: map[string]domain.DirectoryProfile{"artist": {}},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Cache.Backend = BackendBolt
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput, "bolt needs a path")

	cfg = valid()
	cfg.Server.Port = 0
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)

	cfg = valid()
	cfg.Directories = nil
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "type", "artist")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"type":"artist"`)

	buf.Reset()
	SetupLogger(LoggingConfig{Level: "info", Format: "text"}, &buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
