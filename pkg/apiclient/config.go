package apiclient

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTimeout applies when API_TIMEOUT is unset.
const DefaultTimeout = 10 * time.Second

// Config holds the backend address and request timeout.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// LoadConfigFromEnv reads API_BASE_URL and API_TIMEOUT (milliseconds).
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL: os.Getenv("API_BASE_URL"),
		Timeout: DefaultTimeout,
	}
	if raw := os.Getenv("API_TIMEOUT"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("invalid API_TIMEOUT %q: must be a positive number of milliseconds", raw)
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg, nil
}
