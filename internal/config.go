package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/reconnect/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Templates TemplatesConfig   `yaml:"templates"`
	Settings  SettingsConfig    `yaml:"settings"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Settings.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TemplatesConfig points at the message templates file. An empty path uses
// the built-in templates.
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

// SettingsConfig seeds the settings the first time the database is created.
// Later changes go through the settings API and are stored in the database.
type SettingsConfig struct {
	Mode               string `yaml:"mode"`
	CountDaily         int    `yaml:"count_daily"`
	CountWeekly        int    `yaml:"count_weekly"`
	DefaultFrequencies []int  `yaml:"default_frequencies"`
}

// Validate validates the initial settings.
func (c *SettingsConfig) Validate() error {
	if err := c.Defaults().Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// Defaults converts the section to domain settings.
func (c *SettingsConfig) Defaults() models.Settings {
	return models.Settings{
		Mode:               models.Mode(c.Mode),
		CountDaily:         c.CountDaily,
		CountWeekly:        c.CountWeekly,
		DefaultFrequencies: models.PositiveOnly(c.DefaultFrequencies),
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	d := models.DefaultSettings()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./reconnect.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Settings: SettingsConfig{
			Mode:               string(d.Mode),
			CountDaily:         d.CountDaily,
			CountWeekly:        d.CountWeekly,
			DefaultFrequencies: d.DefaultFrequencies,
		},
	}
}
