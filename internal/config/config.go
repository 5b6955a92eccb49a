package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Capture       CaptureConfig      `mapstructure:"capture"`
	Identity      IdentityConfig     `mapstructure:"identity"`
	Display       DisplayConfig      `mapstructure:"display"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Daemon        DaemonConfig       `mapstructure:"daemon"`
}

type CaptureConfig struct {
	Shell           string        `mapstructure:"shell"`
	ShellArgs       []string      `mapstructure:"shell_args"`
	Iterations      int           `mapstructure:"iterations"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type IdentityConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PackagesList string        `mapstructure:"packages_list"`
	PasswdFile   string        `mapstructure:"passwd_file"`
	CatalogFile  string        `mapstructure:"catalog_file"`
	Workers      int           `mapstructure:"workers"`
	CacheSize    int           `mapstructure:"cache_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type DisplayConfig struct {
	MaxRows int     `mapstructure:"max_rows"`
	CPUWarn float64 `mapstructure:"cpu_warn"`
	CPUHigh float64 `mapstructure:"cpu_high"`
	Output  string  `mapstructure:"output"`
}

type NotificationConfig struct {
	LogFile      string `mapstructure:"log_file"`
	JournalFile  string `mapstructure:"journal_file"`
	Verbose      bool   `mapstructure:"verbose"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capture.shell", "su")
	v.SetDefault("capture.shell_args", []string{"-c"})
	v.SetDefault("capture.iterations", 1)
	v.SetDefault("capture.timeout", "10s")
	v.SetDefault("capture.refresh_interval", "3s")

	v.SetDefault("identity.enabled", true)
	v.SetDefault("identity.packages_list", "/data/system/packages.list")
	v.SetDefault("identity.passwd_file", "/etc/passwd")
	v.SetDefault("identity.catalog_file", "")
	v.SetDefault("identity.workers", 4)
	v.SetDefault("identity.cache_size", 512)
	v.SetDefault("identity.cache_ttl", "5s")

	v.SetDefault("display.max_rows", 30)
	v.SetDefault("display.cpu_warn", 20.0)
	v.SetDefault("display.cpu_high", 50.0)
	v.SetDefault("display.output", "table")

	v.SetDefault("notifications.log_file", "asrm.log")
	v.SetDefault("notifications.journal_file", "asrm-journal.log")
	v.SetDefault("notifications.verbose", false)
	v.SetDefault("notifications.color_enabled", true)

	v.SetDefault("daemon.pid_file", filepath.Join(os.TempDir(), "asrm.pid"))
}

// Load reads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ASRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search in current dir, home dir, /etc
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".asrm"))
		}
		v.AddConfigPath("/etc/asrm")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the capture loop cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Capture.Iterations < 1:
		return fmt.Errorf("capture.iterations must be at least 1, got %d", c.Capture.Iterations)
	case c.Capture.Timeout <= 0:
		return fmt.Errorf("capture.timeout must be positive, got %s", c.Capture.Timeout)
	case c.Capture.RefreshInterval <= 0:
		return fmt.Errorf("capture.refresh_interval must be positive, got %s", c.Capture.RefreshInterval)
	case c.Identity.Workers < 0:
		return fmt.Errorf("identity.workers must not be negative, got %d", c.Identity.Workers)
	case c.Display.CPUWarn > c.Display.CPUHigh:
		return fmt.Errorf("display.cpu_warn (%.1f) must not exceed display.cpu_high (%.1f)", c.Display.CPUWarn, c.Display.CPUHigh)
	}
	return nil
}

// Global holds the current loaded configuration.
var Global *Config
