package config

import (
	"time"

	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/validation"
)

// Assembly modes.
const (
	ModeStrict   = "strict"
	ModeDegraded = "degraded"
)

// Default model identifiers, carried over from the original tool.
const (
	DefaultBaseURL      = "https://api.groq.com/openai/v1"
	DefaultWhisperModel = "whisper-large-v3-turbo"
	DefaultLLMModel     = "llama-3.3-70b-versatile"
)

// Config is the immutable pipeline configuration.
type Config struct {
	Name string `yaml:"name" mapstructure:"name"`

	// API holds remote API settings shared by transcription and summarization.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Segmentation bounds each transcription request.
	Segmentation SegmentationConfig `yaml:"segmentation" mapstructure:"segmentation"`

	// Schedule bounds concurrency and retries.
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`

	// AssemblyMode selects strict or degraded transcript assembly.
	AssemblyMode string `yaml:"assembly_mode" mapstructure:"assembly_mode" validate:"oneof=strict degraded"`

	// UILanguage selects the summary/prompt language ("it" default, "en").
	UILanguage string `yaml:"ui_language" mapstructure:"ui_language" validate:"oneof=it en"`

	// AudioLanguage hints the spoken language; "auto" omits the hint.
	AudioLanguage string `yaml:"audio_language" mapstructure:"audio_language"`

	// WorkDir holds temporary artifacts. Empty means the system temp dir.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`

	// KeepPartial hands a degraded transcript to the caller even when a
	// later stage fails.
	KeepPartial bool `yaml:"keep_partial" mapstructure:"keep_partial"`

	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" mapstructure:"telemetry"`
	Logging    logger.Config    `yaml:"logging" mapstructure:"logging"`
}

// APIConfig configures the remote OpenAI-compatible endpoint.
type APIConfig struct {
	Key     string        `yaml:"key" mapstructure:"key" validate:"required"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	WhisperModel string `yaml:"whisper_model" mapstructure:"whisper_model"`
	LLMModel     string `yaml:"llm_model" mapstructure:"llm_model"`

	// LLMTemperature and LLMMaxTokens tune summary generation.
	LLMTemperature float64 `yaml:"llm_temperature" mapstructure:"llm_temperature"`
	LLMMaxTokens   int     `yaml:"llm_max_tokens" mapstructure:"llm_max_tokens"`

	// MaxInputChars bounds the transcript size sent for summarization.
	MaxInputChars int `yaml:"max_input_chars" mapstructure:"max_input_chars"`
}

// SegmentationConfig bounds individual transcription requests.
type SegmentationConfig struct {
	// MaxBytes is the API's maximum request payload.
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gt=0"`
	// MaxDuration is the API's hard per-request duration cap.
	MaxDuration time.Duration `yaml:"max_duration" mapstructure:"max_duration" validate:"gt=0"`
	// Overlap is the deliberate boundary overlap between adjacent segments.
	// Zero disables overlap; the assembler de-duplicates when enabled.
	Overlap time.Duration `yaml:"overlap" mapstructure:"overlap" validate:"gte=0"`
}

// ScheduleConfig bounds concurrency and the retry policy.
type ScheduleConfig struct {
	Concurrency    int           `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1,max=32"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// CheckpointConfig configures segment result persistence for resume.
type CheckpointConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "lecturekit"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 120 * time.Second
	}
	if c.API.WhisperModel == "" {
		c.API.WhisperModel = DefaultWhisperModel
	}
	if c.API.LLMModel == "" {
		c.API.LLMModel = DefaultLLMModel
	}
	if c.API.LLMTemperature == 0 {
		c.API.LLMTemperature = 0.2
	}
	if c.API.LLMMaxTokens == 0 {
		c.API.LLMMaxTokens = 4000
	}
	if c.API.MaxInputChars == 0 {
		c.API.MaxInputChars = 60000
	}
	if c.Segmentation.MaxBytes == 0 {
		// 25MB API cap with a margin for container overhead.
		c.Segmentation.MaxBytes = 24 * 1024 * 1024
	}
	if c.Segmentation.MaxDuration == 0 {
		c.Segmentation.MaxDuration = 5 * time.Minute
	}
	if c.Schedule.Concurrency == 0 {
		c.Schedule.Concurrency = 4
	}
	if c.Schedule.MaxAttempts == 0 {
		c.Schedule.MaxAttempts = 5
	}
	if c.Schedule.InitialBackoff == 0 {
		c.Schedule.InitialBackoff = time.Second
	}
	if c.Schedule.MaxBackoff == 0 {
		c.Schedule.MaxBackoff = 30 * time.Second
	}
	if c.AssemblyMode == "" {
		c.AssemblyMode = ModeStrict
	}
	if c.UILanguage == "" {
		c.UILanguage = "it"
	}
	if c.AudioLanguage == "" {
		c.AudioLanguage = "auto"
	}
	if c.Checkpoint.Enabled && c.Checkpoint.Path == "" {
		c.Checkpoint.Path = "lecturekit.db"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	return c.Logging.Validate()
}
