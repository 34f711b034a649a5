package config

import (
	"flag"
	"os"
	"time"

	"github.com/mehmet-raif33/ulasfleet/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      base URL of the fleet data service (default from Config)
//	-t int         per-request timeout in seconds (default from Config)
//	-r int         extra attempts for retryable failures (default from Config)
//	-d string      path of the local sqlite database (default from Config)
//	-redis string  redis address; empty keeps the session in-process
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-d", "-redis"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the fleet data service")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "per-request timeout (in seconds)")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "extra attempts for retryable failures")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local sqlite database")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for shared sessions (empty = in-process)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
