package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.API.Key = "gsk_test"
	cfg.ApplyDefaults()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %s", cfg.API.BaseURL)
	}
	if cfg.API.WhisperModel != DefaultWhisperModel {
		t.Errorf("whisper model = %s", cfg.API.WhisperModel)
	}
	if cfg.API.LLMModel != DefaultLLMModel {
		t.Errorf("llm model = %s", cfg.API.LLMModel)
	}
	if cfg.AssemblyMode != ModeStrict {
		t.Errorf("assembly mode = %s, want strict", cfg.AssemblyMode)
	}
	if cfg.UILanguage != "it" {
		t.Errorf("ui language = %s, want it", cfg.UILanguage)
	}
	if cfg.AudioLanguage != "auto" {
		t.Errorf("audio language = %s, want auto", cfg.AudioLanguage)
	}
	if cfg.Segmentation.MaxBytes != 24*1024*1024 {
		t.Errorf("max bytes = %d", cfg.Segmentation.MaxBytes)
	}
	if cfg.Segmentation.MaxDuration != 5*time.Minute {
		t.Errorf("max duration = %v", cfg.Segmentation.MaxDuration)
	}
	if cfg.Schedule.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Schedule.Concurrency)
	}
	if cfg.Schedule.MaxAttempts != 5 {
		t.Errorf("max attempts = %d", cfg.Schedule.MaxAttempts)
	}
}

func TestValidateRequiresKey(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without api key")
	}

	cfg.API.Key = "gsk_test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Config{}
	cfg.API.Key = "gsk_test"
	cfg.ApplyDefaults()
	cfg.AssemblyMode = "lenient"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad assembly mode")
	}
}

func TestLoadBindsOriginalEnvNames(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	t.Setenv("UI_LANG", "en")

	cfg, err := Load(LoaderOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Key != "gsk_from_env" {
		t.Errorf("api key = %q", cfg.API.Key)
	}
	if cfg.UILanguage != "en" {
		t.Errorf("ui language = %q, want en", cfg.UILanguage)
	}
}

func TestLoadBindsPrefixedEnvKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	t.Setenv("LECTUREKIT_SCHEDULE_CONCURRENCY", "9")
	t.Setenv("LECTUREKIT_SCHEDULE_MAX_ATTEMPTS", "7")
	t.Setenv("LECTUREKIT_SEGMENTATION_MAX_DURATION", "120s")
	t.Setenv("LECTUREKIT_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := Load(LoaderOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.Concurrency != 9 {
		t.Errorf("concurrency = %d, want 9", cfg.Schedule.Concurrency)
	}
	if cfg.Schedule.MaxAttempts != 7 {
		t.Errorf("max attempts = %d, want 7", cfg.Schedule.MaxAttempts)
	}
	if cfg.Segmentation.MaxDuration != 2*time.Minute {
		t.Errorf("max duration = %v, want 2m", cfg.Segmentation.MaxDuration)
	}
	if cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("sample rate = %v, want 0.25", cfg.Telemetry.SampleRate)
	}
}

func TestCheckpointDefaultPath(t *testing.T) {
	cfg := Config{}
	cfg.API.Key = "gsk_test"
	cfg.Checkpoint.Enabled = true
	cfg.ApplyDefaults()

	if cfg.Checkpoint.Path == "" {
		t.Error("expected default checkpoint path when enabled")
	}
}
