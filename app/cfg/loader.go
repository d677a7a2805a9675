package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./quoteflex.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://quotes.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (admin API disabled if empty)"`
	SettingsFile string `long:"settings-file" env:"SETTINGS_FILE" description:"Optional YAML file with display settings"`

	// External quote source configuration
	QuoteAPIURL     string `long:"quote-api-url" env:"QUOTE_API_URL" default:"https://api.quotable.io" description:"Base URL of the external quote API"`
	QuoteAPITimeout int    `long:"quote-api-timeout" env:"QUOTE_API_TIMEOUT" default:"30" description:"Timeout for external quote API requests in seconds"`
	CacheTTL        int    `long:"cache-ttl" env:"CACHE_TTL" default:"3600" description:"Search result cache TTL in seconds"`
	RedisAddr       string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for search result caching (caching disabled if empty)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"QuoteFlex/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		BaseUrl:         raw.BaseUrl,
		APIAccessKey:    raw.APIAccessKey,
		SettingsFile:    raw.SettingsFile,
		QuoteAPIURL:     raw.QuoteAPIURL,
		QuoteAPITimeout: raw.QuoteAPITimeout,
		CacheTTL:        raw.CacheTTL,
		RedisAddr:       raw.RedisAddr,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
