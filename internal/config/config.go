// Package config loads and validates the regsweep TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/regsweep/regsweep/internal/policy"
)

type Config struct {
	Registry      RegistryConfig      `mapstructure:"registry"`
	Cleanup       CleanupConfig       `mapstructure:"cleanup"`
	ImagePolicies []ImagePolicyConfig `mapstructure:"image_policy"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type RegistryConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Images are explicit "repository/image" specifiers.
	Images []string `mapstructure:"images"`
	// Repositories are swept whole; their images are discovered at run time.
	Repositories []string `mapstructure:"repositories"`
}

type CleanupConfig struct {
	DaysOld     int  `mapstructure:"days_old"`
	KeepMinimum int  `mapstructure:"keep_minimum"`
	DryRun      bool `mapstructure:"dry_run"`
}

// ImagePolicyConfig is a per-image override block. Nil fields fall back to the
// [cleanup] defaults.
type ImagePolicyConfig struct {
	Image       string `mapstructure:"image"`
	DaysOld     *int   `mapstructure:"days_old"`
	KeepMinimum *int   `mapstructure:"keep_minimum"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ValidationError describes an invalid or incomplete configuration. It is the
// only fatal error class: nothing is processed once validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Load reads the configuration from viper, applies defaults, expands
// environment references in credentials and validates the result.
func Load() (*Config, error) {
	viper.SetDefault("cleanup.days_old", 30)
	viper.SetDefault("cleanup.keep_minimum", 3)
	viper.SetDefault("cleanup.dry_run", true)
	viper.SetDefault("logging.level", "info")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Credentials may reference environment variables, e.g. "${REGSWEEP_PASSWORD}"
	cfg.Registry.Username = os.ExpandEnv(cfg.Registry.Username)
	cfg.Registry.Password = os.ExpandEnv(cfg.Registry.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for completeness before any target is
// processed.
func (c *Config) Validate() error {
	if c.Registry.URL == "" {
		return &ValidationError{Field: "registry.url", Reason: "required"}
	}
	if c.Registry.Username == "" {
		return &ValidationError{Field: "registry.username", Reason: "required"}
	}
	if c.Registry.Password == "" {
		return &ValidationError{Field: "registry.password", Reason: "required"}
	}
	if len(c.Registry.Images) == 0 && len(c.Registry.Repositories) == 0 {
		return &ValidationError{Field: "registry.images", Reason: "at least one image or repository must be configured"}
	}
	for _, spec := range c.Registry.Images {
		if _, err := policy.ParseTarget(spec); err != nil {
			return &ValidationError{Field: "registry.images", Reason: err.Error()}
		}
	}

	if c.Cleanup.DaysOld < 0 {
		return &ValidationError{Field: "cleanup.days_old", Reason: "must be non-negative"}
	}
	if c.Cleanup.KeepMinimum < 0 {
		return &ValidationError{Field: "cleanup.keep_minimum", Reason: "must be non-negative"}
	}

	for _, p := range c.ImagePolicies {
		if p.Image == "" {
			return &ValidationError{Field: "image_policy.image", Reason: "required"}
		}
		if p.DaysOld != nil && *p.DaysOld < 0 {
			return &ValidationError{Field: "image_policy.days_old", Reason: fmt.Sprintf("must be non-negative for image %q", p.Image)}
		}
		if p.KeepMinimum != nil && *p.KeepMinimum < 0 {
			return &ValidationError{Field: "image_policy.keep_minimum", Reason: fmt.Sprintf("must be non-negative for image %q", p.Image)}
		}
	}

	return nil
}

// DefaultPolicy returns the global retention defaults.
func (c *Config) DefaultPolicy() policy.RetentionPolicy {
	return policy.RetentionPolicy{
		DaysOld:     c.Cleanup.DaysOld,
		KeepMinimum: c.Cleanup.KeepMinimum,
	}
}

// Overrides converts the [[image_policy]] blocks into resolver overrides.
func (c *Config) Overrides() []policy.Override {
	overrides := make([]policy.Override, 0, len(c.ImagePolicies))
	for _, p := range c.ImagePolicies {
		overrides = append(overrides, policy.Override{
			Image:       p.Image,
			DaysOld:     p.DaysOld,
			KeepMinimum: p.KeepMinimum,
		})
	}
	return overrides
}
