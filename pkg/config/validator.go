package config

import (
	"fmt"
	"net/url"
	"os"
)

// ConfigValidator checks a loaded Config, failing on the first problem.
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll runs every section check in order.
func (v *ConfigValidator) ValidateAll() error {
	checks := []func() error{
		v.validateServer,
		v.validateAPI,
		v.validateChat,
		v.validateSessions,
		v.validateRateLimit,
		v.validateContent,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *ConfigValidator) validateServer() error {
	s := v.cfg.Server
	if s.Port < 1 || s.Port > 65535 {
		return NewValidationError("server", "port", fmt.Errorf("%w: %d", ErrInvalidValue, s.Port))
	}
	if s.ShutdownTimeout <= 0 {
		return NewValidationError("server", "shutdown_timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateAPI() error {
	a := v.cfg.API
	if a.BaseURL == "" {
		return NewValidationError("api", "base_url", fmt.Errorf("%w: set api.base_url or API_BASE_URL", ErrMissingRequiredField))
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError("api", "base_url", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidValue, a.BaseURL))
	}
	if a.Timeout <= 0 {
		return NewValidationError("api", "timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateChat() error {
	if d := v.cfg.Chat.ReplyDelay; d != nil && *d < 0 {
		return NewValidationError("chat", "reply_delay", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateSessions() error {
	s := v.cfg.Sessions
	switch s.Backend {
	case BackendMemory:
	case BackendRedis:
		if s.Redis.Addr == "" {
			return NewValidationError("sessions", "redis.addr", fmt.Errorf("%w: required for redis backend", ErrMissingRequiredField))
		}
	default:
		return NewValidationError("sessions", "backend", fmt.Errorf("%w: %q (want memory or redis)", ErrInvalidValue, s.Backend))
	}
	if s.CookieName == "" {
		return NewValidationError("sessions", "cookie_name", ErrMissingRequiredField)
	}
	if s.IdleTTL <= 0 {
		return NewValidationError("sessions", "idle_ttl", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if s.SweepInterval <= 0 {
		return NewValidationError("sessions", "sweep_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateRateLimit() error {
	r := v.cfg.RateLimit
	if r.ChatQPS < 0 {
		return NewValidationError("rate_limit", "chat_qps", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	if r.Enabled() && v.cfg.Sessions.Redis.Addr == "" {
		return NewValidationError("rate_limit", "chat_qps", fmt.Errorf("%w: sessions.redis.addr is required for rate limiting", ErrMissingRequiredField))
	}
	return nil
}

func (v *ConfigValidator) validateContent() error {
	if v.cfg.ContentPath == "" {
		return nil
	}
	if _, err := os.Stat(v.cfg.ContentPath); err != nil {
		return NewValidationError("content", "path", err)
	}
	return nil
}
