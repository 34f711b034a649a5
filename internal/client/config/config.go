// Package config assembles the client's runtime settings from three layers:
// built-in defaults, an optional JSON file (-c/-config), then command-line
// flags. Later layers override earlier ones.
package config

import "time"

// Config holds runtime settings for the fleet dashboard client.
//
// An empty RedisAddr keeps everything in-process: the sqlite credential
// store and the in-memory session hub. Setting it switches both the store
// and the broadcast bus to redis so separate processes share one session.
type Config struct {
	ServerBaseURL      string
	RequestTimeout     time.Duration
	MaxRetries         int
	TokenCheckInterval time.Duration
	ExpiryWarnWindow   time.Duration
	DatabasePath       string
	RedisAddr          string
	BusChannel         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.MaxRetries = 3
	c.TokenCheckInterval = 30 * time.Second
	c.ExpiryWarnWindow = time.Minute
	c.DatabasePath = "ulasfleet.db"
	c.RedisAddr = ""
	c.BusChannel = "ulasfleet:session"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
