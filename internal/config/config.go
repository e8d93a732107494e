// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs frontier and pipeline behavior.
type CrawlerConfig struct {
	StartURLs    []string `mapstructure:"start_urls"`
	MaxDepth     int      `mapstructure:"max_depth"`
	Concurrency  int      `mapstructure:"concurrency"`
	UserAgent    string   `mapstructure:"user_agent"`
	SameHostOnly bool     `mapstructure:"same_host_only"`
}

// HTTPConfig configures the HTTP fetch client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OutputConfig sets the flat-file output location.
type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	Clean bool   `mapstructure:"clean"`
}

// MetricsConfig toggles the operational HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig controls zap behavior and the log file target.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

// Load builds a Config from disk/environment. Environment variables use
// the TEXTSIFT prefix with dots replaced by underscores, e.g.
// TEXTSIFT_CRAWLER_MAX_DEPTH.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TEXTSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_depth", 5)
	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.user_agent", "textsift-bot/0.1")
	v.SetDefault("crawler.same_host_only", true)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("output.dir", "crawled_pages")
	v.SetDefault("output.clean", true)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.file", "textsift.log")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
