package ports

import (
	"context"
	"time"

	"github.com/forPelevin/hlextract/internal/types"
)

// Downloader fetches the media behind url into dest.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	RenderClip(ctx context.Context, req RenderRequest) error
	ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error)
}

// RenderRequest describes one re-encoded sub-clip.
type RenderRequest struct {
	Input      string
	Start      time.Duration
	End        time.Duration
	Output     string
	VideoCodec string
	AudioCodec string
	// BurnASS, when set, is an ASS subtitle file rendered into the video.
	BurnASS string
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, workDir string) (types.Transcript, error)
}

// Completer sends a prompt to a text-generation backend and returns its raw
// free-text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier decides whether a chunk of transcript text is a highlight.
// Implementations absorb their own backend failures.
type Classifier interface {
	Classifies(ctx context.Context, text string) bool
}
