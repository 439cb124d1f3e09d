// Package config loads the service configuration from the environment once at
// startup. A Config is passed into constructors explicitly; nothing reads
// environment variables after Load returns.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL        = "https://api.clickup.com/api/v2"
	defaultPort           = "8080"
	defaultLookbackHours  = 9.5
	defaultShortTaskMins  = 5
	defaultCacheTTL       = 60 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultProbeTimeout   = 10 * time.Second
)

type Config struct {
	APIKey  string
	TeamID  string
	BaseURL string
	Port    string

	ShortTaskThresholdMinutes int
	DefaultLookbackHours      float64

	RequestTimeout time.Duration
	ProbeTimeout   time.Duration

	RedisAddr string
	CacheTTL  time.Duration
}

var ErrMissingCredentials = errors.New("CLICKUP_API_KEY and CLICKUP_TEAM_ID are required")

// Load reads configuration from the environment, honoring a .env file in the
// working directory when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:                    os.Getenv("CLICKUP_API_KEY"),
		TeamID:                    os.Getenv("CLICKUP_TEAM_ID"),
		BaseURL:                   defaultBaseURL,
		Port:                      defaultPort,
		ShortTaskThresholdMinutes: defaultShortTaskMins,
		DefaultLookbackHours:      defaultLookbackHours,
		RequestTimeout:            defaultRequestTimeout,
		ProbeTimeout:              defaultProbeTimeout,
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		CacheTTL:                  defaultCacheTTL,
	}

	if cfg.APIKey == "" || cfg.TeamID == "" {
		return nil, ErrMissingCredentials
	}

	if v := os.Getenv("CLICKUP_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("SHORT_TASK_THRESHOLD_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return nil, errors.New("SHORT_TASK_THRESHOLD_MINUTES must be a positive integer")
		}
		cfg.ShortTaskThresholdMinutes = mins
	}
	if v := os.Getenv("DEFAULT_LOOKBACK_HOURS"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil || hours <= 0 {
			return nil, errors.New("DEFAULT_LOOKBACK_HOURS must be a positive number")
		}
		cfg.DefaultLookbackHours = hours
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, errors.New("CACHE_TTL_SECONDS must be a positive integer")
		}
		cfg.CacheTTL = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
