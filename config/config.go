package config

import (
	"fmt"
	"net/url"
	"time"
)

// Browser backends.
const (
	BrowserStatic = "static"
	BrowserChrome = "chrome"
)

// Config holds scraper configuration.
type Config struct {
	CatalogURL       string        `mapstructure:"catalog_url"`
	Browser          string        `mapstructure:"browser"` // static or chrome
	Headless         bool          `mapstructure:"headless"`
	WaitTimeout      time.Duration `mapstructure:"wait_timeout"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	Delay            time.Duration `mapstructure:"delay"`
	UserAgent        string        `mapstructure:"user_agent"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots"`
	PageCacheSize    int           `mapstructure:"page_cache_size"`
	RunsDirectory    string        `mapstructure:"runs_dir"`
	LogDirectory     string        `mapstructure:"log_dir"`
	RunName          string        `mapstructure:"run_name"`
	OutputFormat     string        `mapstructure:"format"` // json or dual
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Verbose          bool          `mapstructure:"verbose"`
}

// DefaultConfig returns defaults for the F-Type body hardware catalog.
func DefaultConfig() *Config {
	return &Config{
		CatalogURL:       "https://jaguarpartsestore.com/2015-jaguar-f_type-r-gas_5.0_8-transmission_automatic_8-body_hardware-parts/",
		Browser:          BrowserStatic,
		Headless:         true,
		WaitTimeout:      4 * time.Second,
		RequestTimeout:   30 * time.Second,
		Delay:            0,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt: false,
		PageCacheSize:    256,
		RunsDirectory:    "runs",
		LogDirectory:     "logs",
		RunName:          "f-type-parts-scraper",
		OutputFormat:     "json",
		MetricsAddr:      "",
		Verbose:          false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.CatalogURL == "" {
		return fmt.Errorf("catalog URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.CatalogURL)
	if err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("catalog URL must include a host")
	}

	if c.Browser != BrowserStatic && c.Browser != BrowserChrome {
		return fmt.Errorf("browser must be %s or %s", BrowserStatic, BrowserChrome)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.PageCacheSize < 0 {
		return fmt.Errorf("page cache size cannot be negative")
	}
	if c.RunsDirectory == "" {
		return fmt.Errorf("runs directory cannot be empty")
	}
	if c.RunName == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be json or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
