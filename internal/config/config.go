// Package config provides server configuration loaded from flags with
// environment variable fallbacks.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig indicates configuration values the server cannot run with.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	envListen       = "CHESS_LISTEN"
	envOrigins      = "CHESS_ORIGINS"
	envClockSeconds = "CHESS_CLOCK_SECONDS"
)

// Config holds everything cmd/server needs to start.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	// DefaultClockSeconds is used when a new game request omits a clock; zero
	// means unlimited.
	DefaultClockSeconds int
	TickInterval        time.Duration
	Dev                 bool
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddr:          ":3000",
		AllowedOrigins:      []string{"http://localhost:5173"},
		DefaultClockSeconds: 60,
		TickInterval:        time.Second,
	}
}

// Load parses args (without the program name). Environment variables seed
// the defaults, and flags override them.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	if v := getenv(envListen); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv(envOrigins); v != "" {
		cfg.AllowedOrigins = splitOrigins(v)
	}
	if v := getenv(envClockSeconds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, envClockSeconds, v)
		}
		cfg.DefaultClockSeconds = n
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	origins := strings.Join(cfg.AllowedOrigins, ",")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address to listen on")
	fs.StringVar(&origins, "origins", origins, "comma separated CORS origins")
	fs.IntVar(&cfg.DefaultClockSeconds, "clock", cfg.DefaultClockSeconds, "default clock per side in seconds, 0 for unlimited")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "clock tick interval")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.AllowedOrigins = splitOrigins(origins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if c.DefaultClockSeconds < 0 {
		return fmt.Errorf("%w: negative clock", ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	}
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
