// Package config loads and validates pipeline configuration.
//
// Configuration is resolved in three layers: an optional config.yml, an
// optional .env file (godotenv), and process environment variables bound
// through viper. The credential (GROQ_API_KEY) and interface language
// (UI_LANG) keep the environment variable names of the original desktop
// tool. The resulting Config value is immutable and handed explicitly to
// each pipeline stage.
package config
