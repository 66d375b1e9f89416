package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
)

// SiteFile is the configuration file name inside the config directory.
const SiteFile = "site.yaml"

// SiteYAMLConfig represents the complete site.yaml file structure
type SiteYAMLConfig struct {
	Server    *ServerConfig    `yaml:"server"`
	API       *APIConfig       `yaml:"api"`
	Chat      *ChatConfig      `yaml:"chat"`
	Sessions  *SessionsConfig  `yaml:"sessions"`
	RateLimit *RateLimitConfig `yaml:"rate_limit"`
	Content   *ContentYAML     `yaml:"content"`
}

// ContentYAML selects the site content file.
type ContentYAML struct {
	Path string `yaml:"path"`
}

// Defaults returns the built-in configuration used for anything site.yaml
// leaves unset.
func Defaults() *Config {
	return &Config{
		Server: &ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		API: &APIConfig{
			Timeout: 10 * time.Second,
		},
		Chat: &ChatConfig{
			ReplyDelay: ptr(time.Second),
		},
		Sessions: &SessionsConfig{
			Backend:       BackendMemory,
			CookieName:    "anlac_session",
			IdleTTL:       2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		RateLimit: &RateLimitConfig{},
	}
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Read site.yaml from configDir (optional)
//  2. Expand {{.VAR}} environment references
//  3. Apply API_BASE_URL / API_TIMEOUT over the built-in defaults
//  4. Merge the file on top
//  5. Validate
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"port", cfg.Server.Port,
		"api_base_url", cfg.API.BaseURL,
		"session_backend", cfg.Sessions.Backend,
		"rate_limit", cfg.RateLimit.Enabled())

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	var site SiteYAMLConfig
	err := loadYAML(filepath.Join(configDir, SiteFile), &site)
	switch {
	case errors.Is(err, ErrConfigNotFound):
		slog.Warn("No site.yaml found, using built-in defaults", "config_dir", configDir)
	case err != nil:
		return nil, NewLoadError(SiteFile, err)
	}

	cfg := Defaults()
	cfg.configDir = configDir

	envAPI, err := apiclient.LoadConfigFromEnv()
	if err != nil {
		return nil, NewLoadError("environment", err)
	}
	cfg.API.BaseURL = envAPI.BaseURL
	cfg.API.Timeout = envAPI.Timeout

	// Non-zero values from the file override the defaults.
	if err := mergeSection(cfg.Server, site.Server); err != nil {
		return nil, fmt.Errorf("failed to merge server config: %w", err)
	}
	if err := mergeSection(cfg.API, site.API); err != nil {
		return nil, fmt.Errorf("failed to merge api config: %w", err)
	}
	if err := mergeSection(cfg.Chat, site.Chat); err != nil {
		return nil, fmt.Errorf("failed to merge chat config: %w", err)
	}
	if err := mergeSection(cfg.Sessions, site.Sessions); err != nil {
		return nil, fmt.Errorf("failed to merge sessions config: %w", err)
	}
	if err := mergeSection(cfg.RateLimit, site.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to merge rate_limit config: %w", err)
	}

	if site.Content != nil && site.Content.Path != "" {
		cfg.ContentPath = site.Content.Path
		if !filepath.IsAbs(cfg.ContentPath) {
			cfg.ContentPath = filepath.Join(configDir, cfg.ContentPath)
		}
	}

	return cfg, nil
}

func ptr[T any](v T) *T { return &v }

func mergeSection[T any](dst, src *T) error {
	if src == nil {
		return nil
	}
	return mergo.Merge(dst, src, mergo.WithOverride)
}

func loadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}
