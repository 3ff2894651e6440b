package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PARTS_CATALOG_URL.
const EnvPrefix = "PARTS"

// NewViper returns a viper instance with defaults and environment lookups
// registered for every configuration key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// Load reads the optional config file and unmarshals the merged settings.
// Precedence: flags bound on v, environment, config file, defaults.
func Load(v *viper.Viper, file string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.Browser = strings.ToLower(cfg.Browser)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("catalog_url", d.CatalogURL)
	v.SetDefault("browser", d.Browser)
	v.SetDefault("headless", d.Headless)
	v.SetDefault("wait_timeout", d.WaitTimeout)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("delay", d.Delay)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("respect_robots", d.RespectRobotsTxt)
	v.SetDefault("page_cache_size", d.PageCacheSize)
	v.SetDefault("runs_dir", d.RunsDirectory)
	v.SetDefault("log_dir", d.LogDirectory)
	v.SetDefault("run_name", d.RunName)
	v.SetDefault("format", d.OutputFormat)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("verbose", d.Verbose)
}
