package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Storage       StorageConfig      `mapstructure:"storage"`
	Alarm         AlarmConfig        `mapstructure:"alarm"`
	Audio         AudioConfig        `mapstructure:"audio"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Pushover      PushoverConfig     `mapstructure:"pushover"`
	Server        ServerConfig       `mapstructure:"server"`
	Log           LogConfig          `mapstructure:"log"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // file | sqlite
	Path   string `mapstructure:"path"`
	Key    string `mapstructure:"key"`
}

type AlarmConfig struct {
	RepeatInterval time.Duration `mapstructure:"repeat_interval"`
	MaxRepeats     int           `mapstructure:"max_repeats"`
	AutoDismiss    time.Duration `mapstructure:"auto_dismiss"`
}

type AudioConfig struct {
	Backend string `mapstructure:"backend"` // beep | bell | none
}

type NotificationConfig struct {
	Desktop bool `mapstructure:"desktop"`
}

type PushoverConfig struct {
	Token  string        `mapstructure:"token"`
	User   string        `mapstructure:"user"`
	Retry  time.Duration `mapstructure:"retry"`
	Expire time.Duration `mapstructure:"expire"`
}

// Enabled reports whether both credentials are set.
func (p PushoverConfig) Enabled() bool {
	return p.Token != "" && p.User != ""
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/reminders.json")
	v.SetDefault("storage.key", "reminders")

	v.SetDefault("alarm.repeat_interval", "800ms")
	v.SetDefault("alarm.max_repeats", 30)
	v.SetDefault("alarm.auto_dismiss", "30s")

	v.SetDefault("audio.backend", "beep")
	v.SetDefault("notifications.desktop", true)

	v.SetDefault("pushover.token", "")
	v.SetDefault("pushover.user", "")
	v.SetDefault("pushover.retry", "60s")
	v.SetDefault("pushover.expire", "1h")

	v.SetDefault("server.addr", "127.0.0.1:8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "data/remindme.log")
}

// LoadConfig reads path (optional), a .env file next to the working
// directory (optional) and REMINDME_* environment variables, in increasing
// order of precedence.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REMINDME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("%w: unknown storage driver %q (supported: file, sqlite)", ErrInvalid, c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalid)
	}

	switch c.Audio.Backend {
	case "beep", "bell", "none":
	default:
		return fmt.Errorf("%w: unknown audio backend %q (supported: beep, bell, none)", ErrInvalid, c.Audio.Backend)
	}

	if c.Alarm.RepeatInterval <= 0 {
		return fmt.Errorf("%w: alarm.repeat_interval must be positive", ErrInvalid)
	}
	if c.Alarm.MaxRepeats <= 0 {
		return fmt.Errorf("%w: alarm.max_repeats must be positive", ErrInvalid)
	}
	if c.Alarm.AutoDismiss <= 0 {
		return fmt.Errorf("%w: alarm.auto_dismiss must be positive", ErrInvalid)
	}

	if c.Pushover.Enabled() && c.Pushover.Retry < 30*time.Second {
		// Pushover rejects emergency retries below 30 seconds.
		return fmt.Errorf("%w: pushover.retry must be at least 30s", ErrInvalid)
	}
	return nil
}

// SlogLevel maps log.level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
