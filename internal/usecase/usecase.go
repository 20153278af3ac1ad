package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/domain/highlights"
	"github.com/forPelevin/hlextract/internal/failure"
	"github.com/forPelevin/hlextract/internal/ports"
	"github.com/forPelevin/hlextract/internal/types"
)

// Selector turns transcript chunks into highlights.
type Selector interface {
	Select(ctx context.Context, chunks [][]types.Segment) []types.Highlight
}

// Assembler writes clips for the selected highlights.
type Assembler interface {
	Assemble(ctx context.Context, src, label string, hs []types.Highlight, segs []types.Segment) ([]types.ClipRecord, error)
}

// Workspace is the scratch area of a single run.
type Workspace interface {
	SourcePath() string
	AudioPath() string
	Dir() string
	RemoveSource() error
	Keep() error
}

type Deps struct {
	Downloader ports.Downloader
	Video      ports.VideoTool
	ASR        ports.ASR
	Selector   Selector
	Assembler  Assembler
	Log        zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	URL       string
	Label     string
	ChunkSize int
	Workspace Workspace
}

// Outcome is the terminal state of a run.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeNoHighlights
	OutcomeNoTranscript
	OutcomeAcquisitionFailed
	OutcomeTranscriptionFailed
	OutcomeAssemblyFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeNoHighlights:
		return "no highlights"
	case OutcomeNoTranscript:
		return "no transcript"
	case OutcomeAcquisitionFailed:
		return "acquisition failed"
	case OutcomeTranscriptionFailed:
		return "transcription failed"
	case OutcomeAssemblyFailed:
		return "assembly failed"
	default:
		return "unknown"
	}
}

// Failed reports whether the run ended on an error path.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeAcquisitionFailed, OutcomeTranscriptionFailed, OutcomeAssemblyFailed:
		return true
	}
	return false
}

type Result struct {
	Outcome    Outcome
	Segments   int
	Chunks     int
	Highlights []types.Highlight
	Clips      []types.ClipRecord
	// SourceKept is set when the downloaded media was left on disk.
	SourceKept bool
	// Err is the failure behind a failed outcome, or a cleanup failure
	// on an otherwise successful one.
	Err error
}

// Run drives one URL through download, transcription, classification and
// clip assembly. Errors never escape: they are logged and folded into the
// returned Outcome.
func (u Usecase) Run(ctx context.Context, in Input) Result {
	log := u.d.Log
	ws := in.Workspace
	src := ws.SourcePath()

	log.Info().Str("url", in.URL).Msg("downloading video")
	if err := u.d.Downloader.Download(ctx, in.URL, src); err != nil {
		err = failure.Wrap(failure.ErrAcquisition, "acquisition", "download", err)
		log.Error().Err(err).Msg("download failed")
		return Result{Outcome: OutcomeAcquisitionFailed, Err: err}
	}
	log.Info().Str("path", src).Msg("video downloaded")

	tr, err := u.transcribe(ctx, src, ws)
	if err != nil {
		log.Error().Err(err).Msg("transcription failed")
		return u.keepSource(ws, Result{Outcome: OutcomeTranscriptionFailed, Err: err})
	}
	res := Result{Segments: len(tr.Segments)}
	if len(tr.Segments) == 0 {
		// The source is kept on this path while every later path deletes it.
		log.Warn().
			Err(failure.Wrap(failure.ErrEmptyTranscript, "transcription", "transcribe", nil)).
			Str("path", src).
			Msg("no speech found, keeping source")
		res.Outcome = OutcomeNoTranscript
		return u.keepSource(ws, res)
	}
	log.Info().Int("segments", len(tr.Segments)).Msg("transcription complete")

	chunks := highlights.Chunk(tr.Segments, in.ChunkSize)
	res.Chunks = len(chunks)
	log.Info().Int("chunks", len(chunks)).Msg("classifying chunks")
	res.Highlights = u.d.Selector.Select(ctx, chunks)

	if len(res.Highlights) == 0 {
		log.Info().Msg("no highlights found")
		res.Outcome = OutcomeNoHighlights
		return u.removeSource(ws, res)
	}
	log.Info().Int("highlights", len(res.Highlights)).Msg("assembling clips")

	res.Clips, err = u.d.Assembler.Assemble(ctx, src, in.Label, res.Highlights, tr.Segments)
	if err != nil {
		log.Error().Err(err).Int("written", len(res.Clips)).Msg("clip assembly failed")
		res.Outcome = OutcomeAssemblyFailed
		res.Err = err
		return u.removeSource(ws, res)
	}
	res.Outcome = OutcomeDone
	return u.removeSource(ws, res)
}

func (u Usecase) transcribe(ctx context.Context, src string, ws Workspace) (types.Transcript, error) {
	u.d.Log.Info().Msg("extracting audio")
	if err := u.d.Video.ExtractAudioMono16k(ctx, src, ws.AudioPath()); err != nil {
		return types.Transcript{}, failure.Wrap(failure.ErrTranscription, "transcription", "extract audio", err)
	}
	u.d.Log.Info().Msg("transcribing audio")
	tr, err := u.d.ASR.Transcribe(ctx, ws.AudioPath(), ws.Dir())
	if err != nil {
		return types.Transcript{}, failure.Wrap(failure.ErrTranscription, "transcription", "transcribe", err)
	}
	return tr, nil
}

func (u Usecase) keepSource(ws Workspace, res Result) Result {
	res.SourceKept = true
	if err := ws.Keep(); err != nil {
		u.d.Log.Warn().Err(err).Msg("could not mark source to keep")
	}
	return res
}

func (u Usecase) removeSource(ws Workspace, res Result) Result {
	err := ws.RemoveSource()
	if err == nil {
		u.d.Log.Info().Msg("source video removed")
		return res
	}
	res.SourceKept = true
	if errors.Is(err, failure.ErrMediaInUse) {
		u.d.Log.Warn().Err(err).Str("path", ws.SourcePath()).Msg("source video still in use, left on disk")
	} else {
		u.d.Log.Error().Err(err).Msg("source video cleanup failed")
	}
	if res.Err == nil {
		res.Err = err
	} else {
		res.Err = errors.Join(res.Err, err)
	}
	return res
}
