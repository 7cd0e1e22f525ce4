package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvDatabaseURL         = "DATABASE_URL"
	EnvBindAddr            = "BIND_ADDR"
	EnvCallbackURI         = "CALLBACK_URI"
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvAESKey              = "AES_KEY"
	EnvLogLevel            = "LOG_LEVEL"
	EnvRateLimit           = "RATE_LIMIT"
)

var validate = validator.New()

// Config represents the application configuration loaded from a TOML file and the environment.
//
// A Config is built once at startup and passed by pointer to each component; nothing below cmd/ reads the environment.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service credentials and the state parameter key.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	AESKey  string        `toml:"aes_key" validate:"required,len=32,hexadecimal"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
	RedirectURI  string `toml:"redirect_uri" validate:"required,url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	BindAddr  string  `toml:"bind_addr" validate:"required,hostname_port"`
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
	RateBurst int     `toml:"rate_burst" validate:"gte=0"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Load builds the process configuration.
//
// A .env file is loaded first if present, then the TOML file at path (defaults when it does not exist),
// then environment overrides are applied.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config values with any environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key    string
		target *string
	}{
		{EnvDatabaseURL, &c.Database.Path},
		{EnvBindAddr, &c.Server.BindAddr},
		{EnvCallbackURI, &c.Credentials.Spotify.RedirectURI},
		{EnvSpotifyClientID, &c.Credentials.Spotify.ClientID},
		{EnvSpotifyClientSecret, &c.Credentials.Spotify.ClientSecret},
		{EnvAESKey, &c.Credentials.AESKey},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.target = v
		}
	}

	if v, ok := lookup(EnvRateLimit); ok {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvRateLimit, err)
		}
		c.Server.RateLimit = limit
	}
	return nil
}

// Validate reports every invalid or missing setting at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var combined error
	for _, fe := range fieldErrs {
		combined = multierr.Append(combined, fmt.Errorf("%s: failed %q check", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, combined)
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
