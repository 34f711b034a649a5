package config

import (
	"encoding/json"
	"os"

	"github.com/mehmet-raif33/ulasfleet/internal/flagx"
	"github.com/mehmet-raif33/ulasfleet/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, set values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerBaseURL      string         `json:"server_base_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	MaxRetries         *int           `json:"max_retries"`
	TokenCheckInterval timex.Duration `json:"token_check_interval"`
	ExpiryWarnWindow   timex.Duration `json:"expiry_warn_window"`
	DatabasePath       string         `json:"database_path"`
	RedisAddr          string         `json:"redis_addr"`
	BusChannel         string         `json:"bus_channel"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given nothing is loaded. Fields the JSON omits keep their current
// value. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.TokenCheckInterval.Duration > 0 {
		cfg.TokenCheckInterval = jc.TokenCheckInterval.Duration
	}
	if jc.ExpiryWarnWindow.Duration > 0 {
		cfg.ExpiryWarnWindow = jc.ExpiryWarnWindow.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RedisAddr != "" {
		cfg.RedisAddr = jc.RedisAddr
	}
	if jc.BusChannel != "" {
		cfg.BusChannel = jc.BusChannel
	}
}
