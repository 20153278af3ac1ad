package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/clips"
	"github.com/forPelevin/hlextract/internal/config"
	"github.com/forPelevin/hlextract/internal/domain/highlights"
	"github.com/forPelevin/hlextract/internal/failure"
	"github.com/forPelevin/hlextract/internal/logging"
	"github.com/forPelevin/hlextract/internal/ports"
	"github.com/forPelevin/hlextract/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/hlextract/internal/ports/adapters/openai"
	"github.com/forPelevin/hlextract/internal/ports/adapters/openrouter"
	"github.com/forPelevin/hlextract/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/hlextract/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/hlextract/internal/usecase"
	"github.com/forPelevin/hlextract/internal/workspace"
)

// Run processes one video URL with the adapters selected by cfg. The
// returned error covers setup problems only; everything that happens once
// the run has started is reported through the Result's Outcome.
func Run(ctx context.Context, cfg *config.Config, url string, log zerolog.Logger) (usecase.Result, error) {
	deps, err := buildDeps(cfg, log)
	if err != nil {
		return usecase.Result{}, err
	}

	if removed, err := workspace.Prune(cfg.Paths.TempDir); err != nil {
		log.Warn().Err(err).Msg("stale workspace cleanup incomplete")
	} else if len(removed) > 0 {
		log.Debug().Strs("dirs", removed).Msg("removed stale workspaces")
	}

	ws, err := workspace.Acquire(cfg.Paths.TempDir)
	if err != nil {
		return usecase.Result{}, err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			log.Warn().Err(err).Str("dir", ws.Dir()).Msg("workspace release failed")
		}
	}()
	log.Debug().Str("workspace", ws.Dir()).Msg("workspace ready")

	res := usecase.New(deps).Run(ctx, usecase.Input{
		URL:       url,
		Label:     cfg.Clips.Label,
		ChunkSize: cfg.Highlights.ChunkSize,
		Workspace: ws,
	})
	return res, nil
}

func buildDeps(cfg *config.Config, log zerolog.Logger) (usecase.Deps, error) {
	video := ffmpeg.New(cfg.Transcription.FFmpegPath, cfg.Transcription.FFprobePath)

	classifier, err := newClassifier(cfg, logging.WithComponent(log, "classifier"))
	if err != nil {
		return usecase.Deps{}, err
	}

	asm, err := clips.New(video, cfg.Paths.OutputDir, clips.Options{
		VideoCodec:    cfg.Clips.VideoCodec,
		AudioCodec:    cfg.Clips.AudioCodec,
		Subtitles:     cfg.Clips.Subtitles,
		BurnSubtitles: cfg.Clips.BurnSubtitles,
	}, logging.WithComponent(log, "clips"))
	if err != nil {
		return usecase.Deps{}, err
	}

	return usecase.Deps{
		Downloader: ytdlp.New(cfg.Download.Binary, cfg.Download.Format),
		Video:      video,
		ASR:        whispercpp.New(cfg.Transcription.WhisperBin, cfg.Transcription.WhisperModel, cfg.Transcription.Language),
		Selector:   highlights.NewSelector(classifier, cfg.Highlights.Reason, logging.WithComponent(log, "selector")),
		Assembler:  asm,
		Log:        logging.WithComponent(log, "pipeline"),
	}, nil
}

func newClassifier(cfg *config.Config, log zerolog.Logger) (ports.Classifier, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	var backend ports.Completer
	switch cfg.LLM.Provider {
	case config.ProviderRules:
		return highlights.ScoreClassifier{Threshold: cfg.Highlights.ScoreThreshold}, nil
	case config.ProviderOllama:
		backend = openai.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, timeout)
	case config.ProviderOpenRouter:
		if err := openrouter.ValidateBaseURL(cfg.LLM.BaseURL, cfg.LLM.AllowedHosts); err != nil {
			return nil, failure.Wrap(failure.ErrConfiguration, "config", "llm.base_url", err)
		}
		backend = openrouter.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, openrouter.WithRequestTimeout(timeout))
	default:
		return nil, failure.Wrap(failure.ErrConfiguration, "config", "llm.provider",
			fmt.Errorf("unsupported provider %q", cfg.LLM.Provider))
	}
	log.Debug().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.Model).Msg("classifier backend")
	return highlights.NewLLMClassifier(backend, cfg.Highlights.AffirmativeToken, cfg.Highlights.NegativeToken, log), nil
}

// ensure adapters implement ports
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.Completer = (*openai.Adapter)(nil)
var _ ports.Completer = (*openrouter.Adapter)(nil)
var _ ports.Classifier = (*highlights.LLMClassifier)(nil)
var _ ports.Classifier = highlights.ScoreClassifier{}
var _ usecase.Selector = (*highlights.Selector)(nil)
var _ usecase.Assembler = (*clips.Assembler)(nil)
var _ usecase.Workspace = (*workspace.Workspace)(nil)
