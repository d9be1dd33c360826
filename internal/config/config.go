// Package config loads muzzmand's daemon configuration from flags and
// environment variables, following the same load-then-override pattern
// the rest of this codebase uses.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds the daemon's runtime configuration.
type Config struct {
	// BindAddr is the loopback UDP address the dispatcher listens on.
	BindAddr string
	LogLevel string

	// DefaultDownloadPath is the default download directory. It is
	// shown in the startup banner; the backing Session seeds its own
	// default Location and does not receive this value.
	DefaultDownloadPath string

	// ClientTTL is shown in the startup banner. The dispatcher evicts
	// silent clients after its fixed dispatcher.ClientTTL and does not
	// read this value.
	ClientTTL           time.Duration
	ClientSweepInterval time.Duration
}

// Load parses flags, then applies environment variable overrides, the
// same precedence the rest of this codebase uses.
func Load() *Config {
	cfg := &Config{
		ClientTTL:           3 * time.Second,
		ClientSweepInterval: 500 * time.Millisecond,
	}

	flag.StringVar(&cfg.BindAddr, "bind", "127.0.0.1:2118", "UDP address to listen on")
	flag.StringVar(&cfg.LogLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.DefaultDownloadPath, "downloads", defaultDownloadPath(), "Default download directory (shown in the startup banner)")

	var clientTTLSeconds float64
	flag.Float64Var(&clientTTLSeconds, "client-ttl", cfg.ClientTTL.Seconds(), "Client TTL in seconds shown in the startup banner (the dispatcher uses a fixed 3s)")

	flag.Parse()

	cfg.ClientTTL = time.Duration(clientTTLSeconds * float64(time.Second))

	if bind := os.Getenv("MUZZMAND_BIND"); bind != "" {
		cfg.BindAddr = bind
	}
	if loglevel := os.Getenv("MUZZMAND_LOGLEVEL"); loglevel != "" {
		cfg.LogLevel = loglevel
	}
	if downloads := os.Getenv("MUZZMAND_DOWNLOADS"); downloads != "" {
		cfg.DefaultDownloadPath = downloads
	}
	if ttl := os.Getenv("MUZZMAND_CLIENT_TTL_SECONDS"); ttl != "" {
		if secs, err := strconv.ParseFloat(ttl, 64); err == nil {
			cfg.ClientTTL = time.Duration(secs * float64(time.Second))
		}
	}

	return cfg
}

// defaultDownloadPath mirrors a typical desktop daemon's default: a
// Downloads folder under the invoking user's home directory.
func defaultDownloadPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./Downloads"
	}
	return home + "/Downloads"
}
