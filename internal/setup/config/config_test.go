package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twdlabs/pagebot/internal/setup/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bot.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
version = 1

[discord]
token = "file-token"
owner_id = 123456789
report_channel_id = 42

[bot]
guilds_per_page = 10
compact = true
session_timeout = 60
request_timeout = 5000

[web]
enabled = true
addr = ":9090"

[logging]
level = "debug"
`)

	cfg, usedPath, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, usedPath)

	assert.Equal(t, "file-token", cfg.Discord.Token)
	assert.Equal(t, uint64(123456789), cfg.Discord.OwnerID)
	assert.Equal(t, uint64(42), cfg.Discord.ReportChannelID)
	assert.Equal(t, 10, cfg.Bot.GuildsPerPage)
	assert.True(t, cfg.Bot.Compact)
	assert.Equal(t, 60*time.Second, cfg.Bot.SessionTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.Bot.RequestTimeoutDuration())
	assert.True(t, cfg.Web.Enabled)
	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
version = 1

[discord]
token = "file-token"
owner_id = 123456789
`)

	cfg, _, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Bot.GuildsPerPage)
	assert.False(t, cfg.Bot.Compact)
	assert.Equal(t, 180, cfg.Bot.SessionTimeout)
	assert.Equal(t, 4, cfg.Bot.InviteConcurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.False(t, cfg.Web.Enabled)
}

func TestLoadConfigEnvTokenOverride(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")

	path := writeConfig(t, `
version = 1

[discord]
token = "file-token"
owner_id = 123456789
`)

	cfg, _, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Discord.Token)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		path := writeConfig(t, `
[discord]
token = "file-token"
owner_id = 123456789
`)

		_, _, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrConfigVersionMissing)
	})

	t.Run("version mismatch", func(t *testing.T) {
		path := writeConfig(t, `
version = 99

[discord]
token = "file-token"
owner_id = 123456789
`)

		_, _, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrConfigVersionMismatch)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")

		path := writeConfig(t, `
version = 1

[discord]
owner_id = 123456789
`)

		_, _, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrMissingToken)
	})

	t.Run("missing owner", func(t *testing.T) {
		path := writeConfig(t, `
version = 1

[discord]
token = "file-token"
`)

		_, _, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrMissingOwner)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}
