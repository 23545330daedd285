package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("no Discord token configured")
	ErrMissingOwner          = errors.New("no owner ID configured")
)

// CurrentVersion is the config file version this build expects.
const CurrentVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version int           `koanf:"version"`
	Discord DiscordConfig `koanf:"discord"`
	Bot     BotConfig     `koanf:"bot"`
	Web     WebConfig     `koanf:"web"`
	Logging LoggingConfig `koanf:"logging"`
}

// DiscordConfig contains Discord-related configuration.
type DiscordConfig struct {
	// Bot token for authentication. The DISCORD_TOKEN environment
	// variable takes precedence when set.
	Token string `koanf:"token"`
	// User ID allowed to run owner commands.
	OwnerID uint64 `koanf:"owner_id"`
	// Channel where error reports are delivered (0 disables delivery).
	ReportChannelID uint64 `koanf:"report_channel_id"`
}

// BotConfig contains bot behavior configuration.
type BotConfig struct {
	// Guild entries shown per page.
	GuildsPerPage int `koanf:"guilds_per_page"`
	// Use the reduced three-button control row.
	Compact bool `koanf:"compact"`
	// Session idle timeout in seconds.
	SessionTimeout int `koanf:"session_timeout"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Maximum concurrent invite fetches.
	InviteConcurrency int `koanf:"invite_concurrency"`
	// Retry attempts for invite fetches.
	InviteRetries uint64 `koanf:"invite_retries"`
}

// WebConfig contains the companion web server configuration.
type WebConfig struct {
	// Enable the web server.
	Enabled bool `koanf:"enabled"`
	// Listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Log level (debug, info, warn, error).
	Level string `koanf:"level"`
	// Base directory for log sessions.
	Dir string `koanf:"dir"`
	// Maximum log sessions to retain.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// SessionTimeoutDuration returns the idle timeout as a duration.
func (c *BotConfig) SessionTimeoutDuration() time.Duration {
	return time.Duration(c.SessionTimeout) * time.Second
}

// RequestTimeoutDuration returns the request timeout as a duration.
func (c *BotConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// LoadConfig loads the configuration from the first bot.toml found in the
// search paths. An explicit path takes precedence over the search list.
// Returns the config along with the used config directory.
func LoadConfig(explicitPath string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	if explicitPath != "" {
		if err := k.Load(file.Provider(explicitPath), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load config file %s: %w", explicitPath, err)
		}

		usedConfigPath = explicitPath
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get home directory: %w", err)
		}

		configPaths := []string{
			".pagebot",
			homeDir + "/.pagebot/config",
			"/etc/pagebot/config",
			"/app/config",
			"config",
			".",
		}

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/bot.toml", path)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				usedConfigPath = path
				break
			}
		}

		if usedConfigPath == "" {
			return nil, "", fmt.Errorf("%w: bot.toml", ErrConfigFileNotFound)
		}
	}

	config := defaultConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version); err != nil {
		return nil, "", err
	}

	// Environment token overrides the file so deployments can keep
	// secrets out of the config directory.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		config.Discord.Token = token
	}

	if err := config.validate(); err != nil {
		return nil, "", err
	}

	return config, usedConfigPath, nil
}

// defaultConfig returns a config populated with usable defaults for every
// field the file may omit.
func defaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			GuildsPerPage:     5,
			SessionTimeout:    180,
			RequestTimeout:    15000,
			InviteConcurrency: 4,
			InviteRetries:     2,
		},
		Web: WebConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:         "info",
			Dir:           "logs",
			MaxLogsToKeep: 10,
		},
	}
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}

	if c.Discord.OwnerID == 0 {
		return ErrMissingOwner
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current int) error {
	if current == 0 {
		return fmt.Errorf("%w: bot.toml", ErrConfigVersionMissing)
	}

	if current != CurrentVersion {
		return fmt.Errorf("%w: bot.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, CurrentVersion)
	}

	return nil
}
