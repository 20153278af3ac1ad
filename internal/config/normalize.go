package config

import (
	"strconv"
	"strings"
	"unicode"
)

type lookupFunc func(string) (string, bool)

// applyEnv overlays environment variables (usually loaded from .env) on top
// of file values.
func (c *Config) applyEnv(lookup lookupFunc) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	set(&c.Paths.OutputDir, "HLEXTRACT_OUTPUT_DIR")
	set(&c.LLM.Provider, "HLEXTRACT_LLM_PROVIDER")
	set(&c.LLM.Model, "HLEXTRACT_LLM_MODEL", "OPENROUTER_MODEL")
	set(&c.LLM.BaseURL, "HLEXTRACT_LLM_BASE_URL", "OPENROUTER_BASE_URL")
	set(&c.LLM.APIKey, "HLEXTRACT_LLM_API_KEY", "OPENROUTER_API_KEY")
	set(&c.Transcription.WhisperBin, "WHISPER_BIN")
	set(&c.Transcription.WhisperModel, "WHISPER_MODEL")

	if v, ok := lookup("OPENROUTER_ALLOWED_HOSTS"); ok && strings.TrimSpace(v) != "" {
		c.LLM.AllowedHosts = splitList(v)
	}
	if v, ok := lookup("HLEXTRACT_CHUNK_SIZE"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Highlights.ChunkSize = n
		}
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return err
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	switch c.LLM.Provider {
	case ProviderOllama:
		c.LLM.Model = orDefault(c.LLM.Model, defaultOllamaModel)
		c.LLM.BaseURL = orDefault(c.LLM.BaseURL, defaultOllamaBaseURL)
	case ProviderOpenRouter:
		c.LLM.Model = orDefault(c.LLM.Model, defaultOpenRouterModel)
		c.LLM.BaseURL = orDefault(c.LLM.BaseURL, defaultOpenRouterBaseURL)
	}

	c.Highlights.AffirmativeToken = strings.TrimSpace(c.Highlights.AffirmativeToken)
	c.Clips.Label = NormalizeLabel(c.Clips.Label)
	return nil
}

// NormalizeLabel lowercases label and collapses anything that is not a
// letter or digit into single dashes so it is safe inside a filename.
func NormalizeLabel(label string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
