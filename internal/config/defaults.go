package config

const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderRules      = "rules"

	defaultOllamaBaseURL     = "http://localhost:11434/v1"
	defaultOllamaModel       = "mistral"
	defaultOpenRouterBaseURL = "https://openrouter.ai"
	defaultOpenRouterModel   = "anthropic/claude-3.5-sonnet"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Paths: Paths{
			OutputDir: "highlights",
		},
		Download: Download{
			Binary: "yt-dlp",
			Format: "best[ext=mp4]",
		},
		Transcription: Transcription{
			FFmpegPath:   "ffmpeg",
			FFprobePath:  "ffprobe",
			WhisperBin:   ".cache/bin/whisper.cpp",
			WhisperModel: ".cache/models/ggml-base.bin",
		},
		LLM: LLM{
			Provider:       ProviderOllama,
			TimeoutSeconds: 90,
		},
		Highlights: Highlights{
			ChunkSize:        3,
			AffirmativeToken: "sim",
			NegativeToken:    "NÃO",
			Reason:           "Momento relevante detectado",
			ScoreThreshold:   1.0,
		},
		Clips: Clips{
			Label:      "highlight",
			VideoCodec: "libx264",
			AudioCodec: "aac",
		},
		TimeoutMinutes: 180,
	}
}
