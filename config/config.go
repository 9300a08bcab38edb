// Package config loads gitmirror settings from defaults, an optional YAML
// file, GITMIRROR_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/gitmirror/mirror"
)

// EnvPrefix prefixes every environment variable, e.g. GITMIRROR_BASE_DIR
// or GITMIRROR_LOG_LEVEL.
const EnvPrefix = "GITMIRROR"

// FileName is the configuration file looked up when no file is given.
const FileName = "gitmirror"

const redacted = "********"

// Config holds the complete gitmirror configuration.
type Config struct {
	BaseDir     string        `mapstructure:"base_dir" yaml:"base_dir"`
	Username    string        `mapstructure:"username" yaml:"username"`
	Passphrase  string        `mapstructure:"passphrase" yaml:"passphrase"`
	SSHKey      string        `mapstructure:"ssh_key" yaml:"ssh_key"`
	SSHUser     string        `mapstructure:"ssh_user" yaml:"ssh_user"`
	Proxy       string        `mapstructure:"proxy" yaml:"proxy"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
	Jobs        int           `mapstructure:"jobs" yaml:"jobs"`
	Log         LogConfig     `mapstructure:"log" yaml:"log"`
}

// LogConfig holds logging configuration. File logging is disabled while
// File is empty.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// DefaultBaseDir returns <user cache dir>/gitmirror, or a directory under
// the system temp dir when the user has no cache directory.
func DefaultBaseDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gitmirror")
}

// SetDefaults registers a default for every key. Keys without a default
// are invisible to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", DefaultBaseDir())
	v.SetDefault("username", "")
	v.SetDefault("passphrase", "")
	v.SetDefault("ssh_key", "")
	v.SetDefault("ssh_user", mirror.DefaultSSHUser)
	v.SetDefault("proxy", "")
	v.SetDefault("lock_timeout", mirror.DefaultLockTimeout)
	v.SetDefault("jobs", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

// Load reads the configuration into v and returns it.
//
// When file is empty, gitmirror.yaml is searched for in the user config
// directory and the working directory; a missing file is not an error.
// A file given explicitly must exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gitmirror"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "failed to read config file")
		}
	}

	return New(v)
}

// New decodes and validates the configuration held by v.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "unable to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return platformerrors.New(platformerrors.CodeInvalidInput, "base_dir is required")
	}
	if c.LockTimeout < 0 {
		return platformerrors.New(platformerrors.CodeInvalidInput, "lock_timeout must not be negative")
	}
	if c.Jobs < 1 {
		return platformerrors.New(platformerrors.CodeInvalidInput, "jobs must be at least 1")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInvalidInput, "invalid log.level %q", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return platformerrors.New(platformerrors.CodeInvalidInput, "log rotation limits must not be negative")
	}

	return nil
}

// Connection returns the credentials and proxy for mirror.WithConnection.
func (c *Config) Connection() mirror.ConnectionContext {
	return mirror.ConnectionContext{
		Username:   c.Username,
		Passphrase: c.Passphrase,
		SSHKeyPath: c.SSHKey,
		SSHUser:    c.SSHUser,
		Proxy:      c.Proxy,
	}
}

// YAML renders the effective configuration with the passphrase masked.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.Passphrase != "" {
		out.Passphrase = redacted
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to render config")
	}

	return data, nil
}
