package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths controls where clips and per-run scratch files live.
type Paths struct {
	OutputDir string `toml:"output_dir" validate:"required"`
	// TempDir is the parent of per-run workspaces. Empty means os.TempDir().
	TempDir string `toml:"temp_dir"`
}

// Download configures the yt-dlp acquisition backend.
type Download struct {
	Binary string `toml:"binary" validate:"required"`
	Format string `toml:"format" validate:"required"`
}

// Transcription configures audio extraction and whisper.cpp.
type Transcription struct {
	FFmpegPath   string `toml:"ffmpeg_path" validate:"required"`
	FFprobePath  string `toml:"ffprobe_path" validate:"required"`
	WhisperBin   string `toml:"whisper_bin" validate:"required"`
	WhisperModel string `toml:"whisper_model" validate:"required"`
	Language     string `toml:"language"`
}

// LLM selects and configures the classification backend.
type LLM struct {
	Provider       string   `toml:"provider" validate:"oneof=ollama openrouter rules"`
	Model          string   `toml:"model"`
	BaseURL        string   `toml:"base_url"`
	APIKey         string   `toml:"api_key"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	TimeoutSeconds int      `toml:"timeout_seconds" validate:"gte=0"`
}

// Highlights configures chunking and verdict interpretation.
type Highlights struct {
	ChunkSize        int     `toml:"chunk_size" validate:"gte=1"`
	AffirmativeToken string  `toml:"affirmative_token" validate:"required"`
	NegativeToken    string  `toml:"negative_token" validate:"required"`
	Reason           string  `toml:"reason" validate:"required"`
	ScoreThreshold   float64 `toml:"score_threshold" validate:"gte=0"`
}

// Clips configures clip naming and encoding.
type Clips struct {
	Label         string `toml:"label" validate:"required"`
	VideoCodec    string `toml:"video_codec" validate:"required"`
	AudioCodec    string `toml:"audio_codec" validate:"required"`
	Subtitles     bool   `toml:"subtitles"`
	BurnSubtitles bool   `toml:"burn_subtitles"`
}

// Config is the full hlextract configuration.
type Config struct {
	Paths          Paths         `toml:"paths"`
	Download       Download      `toml:"download"`
	Transcription  Transcription `toml:"transcription"`
	LLM            LLM           `toml:"llm"`
	Highlights     Highlights    `toml:"highlights"`
	Clips          Clips         `toml:"clips"`
	TimeoutMinutes int           `toml:"timeout_minutes" validate:"gte=1"`
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/hlextract/config.toml")
}

// Load reads the configuration file at path, or the first default location
// that exists when path is empty, applies environment overrides and
// validates the result. The second return value is the file actually read
// ("" when running on defaults).
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolved, explicit, err := resolvePath(path)
	if err != nil {
		return nil, "", err
	}

	if resolved != "" {
		data, err := os.ReadFile(resolved)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, "", fmt.Errorf("parse config %s: %w", resolved, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			resolved = ""
		default:
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

// Overrides are command-line values that win over the file and environment.
type Overrides struct {
	OutputDir string
	Label     string
}

// ApplyOverrides sets the non-empty overrides and re-validates.
func (c *Config) ApplyOverrides(o Overrides) error {
	if v := strings.TrimSpace(o.OutputDir); v != "" {
		c.Paths.OutputDir = v
	}
	if v := strings.TrimSpace(o.Label); v != "" {
		c.Clips.Label = v
	}
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// WriteSample writes the commented sample configuration to path. It refuses
// to overwrite an existing file unless overwrite is set.
func WriteSample(path string, overwrite bool) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(expanded); err == nil {
			return fmt.Errorf("config file %s already exists", expanded)
		}
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func resolvePath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		p, err := expandPath(path)
		return p, true, err
	}
	candidates := []string{"hlextract.toml"}
	if p, err := DefaultConfigPath(); err == nil {
		candidates = append(candidates, p)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, false, nil
		}
	}
	return "", false, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
