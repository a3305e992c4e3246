// Package config loads orchestrator configuration from the environment
// and an optional config file, mirroring the teacher's
// internal/config.Load: viper-backed, env-prefixed, defaults set before
// any file is read. Reworked around the orchestration core's own
// concerns (provider credential variables, parallelism override,
// default execution mode) instead of the teacher's editor/TUI settings.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/council-ai/orchestrator-core/internal/availability"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

const appName = "orchestrator"

// ProviderEnv maps each known provider to the env vars the Availability
// Oracle reads at construction.
var ProviderEnv = []availability.ProviderSpec{
	{Provider: "anthropic", CredentialVar: "ANTHROPIC_API_KEY"},
	{Provider: "openai", CredentialVar: "OPENAI_API_KEY"},
	{Provider: "google", CredentialVar: "GOOGLE_API_KEY"},
	{Provider: "bedrock", CredentialVar: "AWS_ACCESS_KEY_ID"},
	{Provider: "openrouter", CredentialVar: "OPENROUTER_API_KEY"},
	{Provider: "local", EndpointVar: "LOCAL_MODEL_ENDPOINT"},
}

// Config is the orchestrator's runtime configuration.
type Config struct {
	DefaultMode          orchestrator.ExecutionMode
	ParallelismOverride  int // ORCH_PARALLELISM_OVERRIDE; 0 means "use mode default"
	HealthCacheTTLSecs   int
	BreakerFailureThresh int
	BreakerBaseTimeoutS  int
	LogLevel             string
	CatalogPath          string // optional path to a TOML model catalog; "" uses the built-in default
}

// Load reads configuration from the environment (prefixed ORCHESTRATOR_;
// the parallelism override is also read from ORCH_PARALLELISM_OVERRIDE)
// and an optional config file named .orchestrator.{json,yaml,toml}, applying
// defaults first so a partial file or environment still yields a usable
// Config.
func Load() (*Config, error) {
	v := viper.New()
	configureViper(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{
		DefaultMode:          orchestrator.ExecutionMode(v.GetString("default_mode")),
		ParallelismOverride:  v.GetInt("parallelism_override"),
		HealthCacheTTLSecs:   v.GetInt("health_cache_ttl_secs"),
		BreakerFailureThresh: v.GetInt("breaker_failure_threshold"),
		BreakerBaseTimeoutS:  v.GetInt("breaker_base_timeout_secs"),
		LogLevel:             v.GetString("log_level"),
		CatalogPath:          v.GetString("catalog_path"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureViper(v *viper.Viper) {
	v.SetConfigName("." + appName)
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.AutomaticEnv()
	_ = v.BindEnv("parallelism_override", "ORCHESTRATOR_PARALLELISM_OVERRIDE", "ORCH_PARALLELISM_OVERRIDE")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_mode", string(orchestrator.ModeBalanced))
	v.SetDefault("parallelism_override", 0)
	v.SetDefault("health_cache_ttl_secs", 60)
	v.SetDefault("breaker_failure_threshold", 5)
	v.SetDefault("breaker_base_timeout_secs", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("catalog_path", "")
}

func (c *Config) validate() error {
	switch c.DefaultMode {
	case orchestrator.ModeFast, orchestrator.ModeBalanced, orchestrator.ModeBestQuality:
	default:
		return fmt.Errorf("config: invalid default_mode %q", c.DefaultMode)
	}
	if c.HealthCacheTTLSecs <= 0 {
		return fmt.Errorf("config: health_cache_ttl_secs must be positive")
	}
	if c.BreakerFailureThresh <= 0 {
		return fmt.Errorf("config: breaker_failure_threshold must be positive")
	}
	return nil
}
