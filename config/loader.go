package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configKeys lists every mapstructure path in Config so the matching
// LECTUREKIT_* environment variable reaches Unmarshal.
var configKeys = []string{
	"name",
	"api.key",
	"api.base_url",
	"api.timeout",
	"api.whisper_model",
	"api.llm_model",
	"api.llm_temperature",
	"api.llm_max_tokens",
	"api.max_input_chars",
	"segmentation.max_bytes",
	"segmentation.max_duration",
	"segmentation.overlap",
	"schedule.concurrency",
	"schedule.max_attempts",
	"schedule.initial_backoff",
	"schedule.max_backoff",
	"assembly_mode",
	"ui_language",
	"audio_language",
	"work_dir",
	"keep_partial",
	"checkpoint.enabled",
	"checkpoint.path",
	"telemetry.enabled",
	"telemetry.service_name",
	"telemetry.endpoint",
	"telemetry.insecure",
	"telemetry.sample_rate",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.no_color",
	"logging.timestamp",
	"logging.caller",
}

// LoaderOptions controls where configuration is read from.
type LoaderOptions struct {
	// ConfigFile is an explicit config.yml path. Empty searches defaults.
	ConfigFile string
	// EnvFile is an explicit .env path. Empty searches defaults.
	EnvFile string
}

// Load reads configuration from file, .env, and environment, applies
// defaults, and validates the result.
func Load(opts LoaderOptions) (*Config, error) {
	if envFile := resolveEnvFile(opts.EnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("LECTUREKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// each key needs an explicit binding.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	// Environment names kept from the original desktop tool.
	_ = v.BindEnv("api.key", "GROQ_API_KEY")
	_ = v.BindEnv("ui_language", "UI_LANG")

	if cfgFile := resolveConfigFile(opts.ConfigFile); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, path := range []string{"./config.yml", "./config/config.yml"} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func resolveEnvFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if fileExists(".env") {
		return ".env"
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
