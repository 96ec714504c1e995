package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store backend identifiers.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// StoreConfig selects and configures the reminder store backend.
type StoreConfig struct {
	Backend         string `mapstructure:"backend" yaml:"backend"`
	SQLitePath      string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MongoURI        string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// PollConfig controls the background check loop.
type PollConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// SoundConfig configures the audible alarm.
type SoundConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Asset is the audio file to play. Relative paths resolve against
	// the config directory.
	Asset string `mapstructure:"asset" yaml:"asset"`

	// Player forces a specific playback binary (e.g., "paplay").
	Player string `mapstructure:"player" yaml:"player"`
}

// TrayConfig configures desktop balloon notifications.
type TrayConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// EmailConfig holds the outbound SMTP settings.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`

	// TLS selects implicit TLS; otherwise STARTTLS is used.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	From     string `mapstructure:"from" yaml:"from"`
	To       string `mapstructure:"to" yaml:"to"`
	Password string `mapstructure:"password" yaml:"-"`
}

// VoiceConfig holds the Twilio voice call settings.
type VoiceConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	AccountSID string `mapstructure:"account_sid" yaml:"account_sid"`
	AuthToken  string `mapstructure:"auth_token" yaml:"-"`
	From       string `mapstructure:"from" yaml:"from"`
	To         string `mapstructure:"to" yaml:"to"`

	// Language and Voice are passed through to the TwiML <Say> verb
	// (e.g., "ta-IN" and "Polly.Kajal").
	Language string `mapstructure:"language" yaml:"language"`
	Voice    string `mapstructure:"voice" yaml:"voice"`

	// Message overrides the spoken template. Supports {name}, {dosage}
	// and {time} placeholders.
	Message string `mapstructure:"message" yaml:"message"`

	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// NotifyConfig groups every notification sink.
type NotifyConfig struct {
	SinkTimeoutSec int         `mapstructure:"sink_timeout_sec" yaml:"sink_timeout_sec"`
	Sound          SoundConfig `mapstructure:"sound" yaml:"sound"`
	Tray           TrayConfig  `mapstructure:"tray" yaml:"tray"`
	Email          EmailConfig `mapstructure:"email" yaml:"email"`
	Voice          VoiceConfig `mapstructure:"voice" yaml:"voice"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme         string `mapstructure:"theme" yaml:"theme"`
	SnoozeMinutes int    `mapstructure:"snooze_minutes" yaml:"snooze_minutes"`
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`
	Notify  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// envBindings maps config keys to the environment variables the
// reminder has always read its credentials from.
var envBindings = map[string]string{
	"notify.email.from":        "EMAIL_ADDRESS",
	"notify.email.password":    "EMAIL_PASSWORD",
	"notify.email.to":          "RECIPIENT_EMAIL",
	"notify.voice.account_sid": "TWILIO_ACCOUNT_SID",
	"notify.voice.auth_token":  "TWILIO_AUTH_TOKEN",
	"notify.voice.from":        "TWILIO_FROM_NUMBER",
	"notify.voice.to":          "TWILIO_TO_NUMBER",
}

// ConfigDir returns ~/.config/medreminder, or the working directory if
// the home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "medreminder")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/medreminder/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := ConfigDir()
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite_path", filepath.Join(dir, "reminders.db"))
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017/")
	v.SetDefault("store.mongo_database", "reminder_db")
	v.SetDefault("store.mongo_collection", "reminders")
	v.SetDefault("poll.interval_sec", 30)
	v.SetDefault("notify.sink_timeout_sec", 20)
	v.SetDefault("notify.sound.enabled", true)
	v.SetDefault("notify.sound.asset", "alarm.wav")
	v.SetDefault("notify.tray.enabled", true)
	v.SetDefault("notify.email.enabled", true)
	v.SetDefault("notify.email.smtp_host", "smtp.gmail.com")
	v.SetDefault("notify.email.smtp_port", "587")
	v.SetDefault("notify.voice.enabled", true)
	v.SetDefault("notify.voice.base_url", "https://api.twilio.com")
	v.SetDefault("display.theme", "dark")
	v.SetDefault("display.snooze_minutes", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dir, "medreminder.log"))
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("MEDREMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "MEDREMINDER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return v, nil
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults plus environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Poll.IntervalSec <= 0 {
		cfg.Poll.IntervalSec = 30
	}
	if cfg.Notify.SinkTimeoutSec <= 0 {
		cfg.Notify.SinkTimeoutSec = 20
	}
	if cfg.Display.SnoozeMinutes < 1 || cfg.Display.SnoozeMinutes > 1440 {
		cfg.Display.SnoozeMinutes = 10
	}
	if cfg.Notify.Sound.Asset != "" && !filepath.IsAbs(cfg.Notify.Sound.Asset) {
		cfg.Notify.Sound.Asset = filepath.Join(filepath.Dir(path), cfg.Notify.Sound.Asset)
	}

	return cfg, nil
}

// SaveTheme records theme as display.theme in the YAML file at path,
// creating it and its parent directories if needed. Only keys already in
// the file are kept; runtime values from defaults, the environment or
// flags are never written.
func SaveTheme(path, theme string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.Set("display.theme", theme)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
