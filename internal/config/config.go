package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jfmyers9/scloud/pkg/soundcloud"
)

// Config holds application configuration
type Config struct {
	// Number of pages listing commands fetch by default
	// Default: 1
	Pages int

	// Refresh the session and retry once when the API answers 401
	RefreshOnForbidden bool

	// Interval between outbox replays in the sync command
	SyncInterval time.Duration

	// SoundCloud application credentials and session
	SoundCloud SoundCloudConfig

	dir string
}

// SoundCloudConfig holds SoundCloud specific configuration
type SoundCloudConfig struct {
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	RedirectURI  string `validate:"required,url"`

	Session SessionConfig
}

// SessionConfig is the persisted OAuth session
type SessionConfig struct {
	AccessToken       string
	RefreshToken      string
	Expiry            time.Time
	Scope             string
	AuthorizationCode string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from the default directory and environment
func Load() (*Config, error) {
	return LoadFrom(getConfigDir())
}

// LoadFrom reads configuration from dir and environment. A .env file in
// the working directory is loaded into the environment first.
func LoadFrom(dir string) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("pages", 1)
	v.SetDefault("refresh_on_forbidden", true)
	v.SetDefault("sync_interval", "5m")
	v.SetDefault("soundcloud.redirect_uri", "http://localhost:8976/callback")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// SCLOUD_SOUNDCLOUD_CLIENT_ID overrides soundcloud.client_id
	v.SetEnvPrefix("SCLOUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Pages:              v.GetInt("pages"),
		RefreshOnForbidden: v.GetBool("refresh_on_forbidden"),
		SyncInterval:       v.GetDuration("sync_interval"),
		SoundCloud: SoundCloudConfig{
			ClientID:     v.GetString("soundcloud.client_id"),
			ClientSecret: v.GetString("soundcloud.client_secret"),
			RedirectURI:  v.GetString("soundcloud.redirect_uri"),
			Session: SessionConfig{
				AccessToken:       v.GetString("soundcloud.session.access_token"),
				RefreshToken:      v.GetString("soundcloud.session.refresh_token"),
				Expiry:            v.GetTime("soundcloud.session.expiry"),
				Scope:             v.GetString("soundcloud.session.scope"),
				AuthorizationCode: v.GetString("soundcloud.session.authorization_code"),
			},
		},
		dir: dir,
	}

	if cfg.Pages < 1 {
		cfg.Pages = 1
	}

	return cfg, nil
}

// ValidateLogin checks that the credentials needed for the OAuth flow
// are present
func (c *Config) ValidateLogin() error {
	if err := validate.Struct(c.SoundCloud); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag())
			}
			return fmt.Errorf("invalid soundcloud configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid soundcloud configuration: %w", err)
	}
	return nil
}

// Session returns the persisted session, or nil when logged out
func (c *Config) Session() *soundcloud.Session {
	s := c.SoundCloud.Session
	if s.AccessToken == "" {
		return nil
	}
	return &soundcloud.Session{
		AccessToken:       s.AccessToken,
		RefreshToken:      s.RefreshToken,
		Expiry:            s.Expiry,
		Scope:             s.Scope,
		AuthorizationCode: s.AuthorizationCode,
	}
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "scloud")

	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Dir returns the directory the configuration was loaded from
func (c *Config) Dir() string {
	if c.dir == "" {
		return getConfigDir()
	}
	return c.dir
}

const configFileMode os.FileMode = 0600

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	configFile := filepath.Join(c.Dir(), "config.yaml")

	v.Set("pages", c.Pages)
	v.Set("refresh_on_forbidden", c.RefreshOnForbidden)
	v.Set("sync_interval", c.SyncInterval.String())
	v.Set("soundcloud.client_id", c.SoundCloud.ClientID)
	v.Set("soundcloud.client_secret", c.SoundCloud.ClientSecret)
	v.Set("soundcloud.redirect_uri", c.SoundCloud.RedirectURI)
	v.Set("soundcloud.session.access_token", c.SoundCloud.Session.AccessToken)
	v.Set("soundcloud.session.refresh_token", c.SoundCloud.Session.RefreshToken)
	v.Set("soundcloud.session.expiry", c.SoundCloud.Session.Expiry)
	v.Set("soundcloud.session.scope", c.SoundCloud.Session.Scope)
	v.Set("soundcloud.session.authorization_code", c.SoundCloud.Session.AuthorizationCode)

	// The file holds credentials. Restrict it before any content lands.
	if err := restrictFile(configFile); err != nil {
		return err
	}
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// restrictFile creates path if needed and makes it readable only by the
// owner.
func restrictFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, configFileMode)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := os.Chmod(path, configFileMode); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}
	return nil
}

// SessionStore persists the SoundCloud session in the config file
type SessionStore struct {
	cfg *Config
}

// NewSessionStore returns a store writing through cfg
func NewSessionStore(cfg *Config) *SessionStore {
	return &SessionStore{cfg: cfg}
}

// Save records s and writes the config file
func (s *SessionStore) Save(session *soundcloud.Session) error {
	s.cfg.SoundCloud.Session = SessionConfig{
		AccessToken:       session.AccessToken,
		RefreshToken:      session.RefreshToken,
		Expiry:            session.Expiry,
		Scope:             session.Scope,
		AuthorizationCode: session.AuthorizationCode,
	}
	return s.cfg.Save()
}

// Clear removes the session and writes the config file
func (s *SessionStore) Clear() error {
	s.cfg.SoundCloud.Session = SessionConfig{}
	return s.cfg.Save()
}
