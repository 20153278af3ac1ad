package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/hlextract/internal/failure"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HLEXTRACT_OUTPUT_DIR", "HLEXTRACT_LLM_PROVIDER", "HLEXTRACT_LLM_MODEL",
		"HLEXTRACT_LLM_BASE_URL", "HLEXTRACT_LLM_API_KEY", "HLEXTRACT_CHUNK_SIZE",
		"OPENROUTER_MODEL", "OPENROUTER_BASE_URL", "OPENROUTER_API_KEY",
		"OPENROUTER_ALLOWED_HOSTS", "WHISPER_BIN", "WHISPER_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaultsUnderFileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[highlights]
chunk_size = 5

[clips]
label = "My Talk!"
`)

	cfg, resolved, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Highlights.ChunkSize != 5 {
		t.Fatalf("expected chunk size 5, got %d", cfg.Highlights.ChunkSize)
	}
	if cfg.Clips.Label != "my-talk" {
		t.Fatalf("expected normalized label, got %q", cfg.Clips.Label)
	}
	if cfg.Highlights.AffirmativeToken != "sim" {
		t.Fatalf("expected default affirmative token, got %q", cfg.Highlights.AffirmativeToken)
	}
	if cfg.LLM.Model != defaultOllamaModel || cfg.LLM.BaseURL != defaultOllamaBaseURL {
		t.Fatalf("expected ollama defaults, got model=%q base=%q", cfg.LLM.Model, cfg.LLM.BaseURL)
	}
	if cfg.Paths.OutputDir != "highlights" {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoad_SampleConfigIsValid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteSample(path, false); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite existing sample")
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	want := Default()
	if cfg.Highlights != want.Highlights {
		t.Fatalf("sample highlights differ from defaults: %+v vs %+v", cfg.Highlights, want.Highlights)
	}
	if cfg.Clips != want.Clips {
		t.Fatalf("sample clips differ from defaults: %+v vs %+v", cfg.Clips, want.Clips)
	}
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	env := map[string]string{
		"HLEXTRACT_LLM_PROVIDER":   "openrouter",
		"OPENROUTER_API_KEY":       "sk-test",
		"OPENROUTER_ALLOWED_HOSTS": "proxy.internal, openrouter.ai",
		"HLEXTRACT_CHUNK_SIZE":     "7",
		"OPENROUTER_MODEL":         "  ",
	}
	cfg := Default()
	cfg.LLM.Model = "from-file"
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.LLM.Provider != "openrouter" || cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.Model != "from-file" {
		t.Fatalf("blank env value must not override model, got %q", cfg.LLM.Model)
	}
	if len(cfg.LLM.AllowedHosts) != 2 || cfg.LLM.AllowedHosts[0] != "proxy.internal" {
		t.Fatalf("unexpected allowed hosts: %v", cfg.LLM.AllowedHosts)
	}
	if cfg.Highlights.ChunkSize != 7 {
		t.Fatalf("expected chunk size 7, got %d", cfg.Highlights.ChunkSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{name: "defaults"},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Highlights.ChunkSize = 0 },
			wantSub: "highlights.chunk_size must be >= 1",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "gpt" },
			wantSub: "llm.provider must be one of",
		},
		{
			name:    "empty label",
			mutate:  func(c *Config) { c.Clips.Label = "" },
			wantSub: "clips.label must be set",
		},
		{
			name: "openrouter without key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOpenRouter
				c.LLM.BaseURL = defaultOpenRouterBaseURL
			},
			wantSub: "llm.api_key is required",
		},
		{
			name: "openrouter over http",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOpenRouter
				c.LLM.APIKey = "k"
				c.LLM.BaseURL = "http://openrouter.ai"
			},
			wantSub: "https is required",
		},
		{
			name:    "video stream copy",
			mutate:  func(c *Config) { c.Clips.VideoCodec = "copy" },
			wantSub: `"copy" is not allowed`,
		},
		{
			name:    "audio stream copy",
			mutate:  func(c *Config) { c.Clips.AudioCodec = " COPY" },
			wantSub: `"copy" is not allowed`,
		},
		{
			name:    "burn without subtitles",
			mutate:  func(c *Config) { c.Clips.BurnSubtitles = true },
			wantSub: "requires clips.subtitles",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantSub == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantSub)
			}
			if !errors.Is(err, failure.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("expected %q in %q", tt.wantSub, err.Error())
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"highlight":         "highlight",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := NormalizeLabel(in); got != want {
				t.Fatalf("NormalizeLabel(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyOverrides(Overrides{OutputDir: "  clips/out ", Label: "My Talk!"}); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if cfg.Paths.OutputDir != filepath.Clean("clips/out") || cfg.Clips.Label != "my-talk" {
		t.Fatalf("unexpected overrides: out=%q label=%q", cfg.Paths.OutputDir, cfg.Clips.Label)
	}

	if err := cfg.ApplyOverrides(Overrides{}); err != nil {
		t.Fatalf("empty overrides should keep config valid: %v", err)
	}
	if cfg.Clips.Label != "my-talk" {
		t.Fatalf("empty override replaced label: %q", cfg.Clips.Label)
	}

	err := cfg.ApplyOverrides(Overrides{Label: "___"})
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("expected configuration error for unusable label, got %v", err)
	}
}
