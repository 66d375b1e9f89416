package config

import "time"

// Session storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the umbrella configuration object returned by Initialize.
type Config struct {
	configDir string

	Server    *ServerConfig
	API       *APIConfig
	Chat      *ChatConfig
	Sessions  *SessionsConfig
	RateLimit *RateLimitConfig

	// ContentPath points at an optional site content YAML that replaces the
	// built-in catalog. Relative paths resolve against the config directory.
	ContentPath string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	TrustedProxies  []string      `yaml:"trusted_proxies"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// APIConfig points at the backend REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChatConfig tunes the chat widget. Fields are pointers so an explicit zero
// in site.yaml (reply_delay: 0s, greeting: "") survives the merge over
// defaults. A nil Greeting keeps the widget's built-in greeting.
type ChatConfig struct {
	ReplyDelay *time.Duration `yaml:"reply_delay"`
	Greeting   *string        `yaml:"greeting"`
}

// SessionsConfig controls visitor sessions and where auth tokens live.
type SessionsConfig struct {
	Backend       string        `yaml:"backend"`
	CookieName    string        `yaml:"cookie_name"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig is shared by the Redis token store and the rate limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig throttles the chat endpoints per client IP. Zero QPS
// disables the limiter.
type RateLimitConfig struct {
	ChatQPS int `yaml:"chat_qps"`
}

// Enabled reports whether the chat limiter should be installed.
func (r *RateLimitConfig) Enabled() bool {
	return r != nil && r.ChatQPS > 0
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Sessions.Backend == BackendRedis || c.RateLimit.Enabled()
}

// ConfigDir returns the configuration directory path
func (c *Config) ConfigDir() string {
	return c.configDir
}
