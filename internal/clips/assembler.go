package clips

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/domain/subtitles"
	"github.com/forPelevin/hlextract/internal/failure"
	"github.com/forPelevin/hlextract/internal/ports"
	"github.com/forPelevin/hlextract/internal/types"
)

// Options tune how clips are encoded and which sidecars are written.
type Options struct {
	VideoCodec    string
	AudioCodec    string
	Subtitles     bool
	BurnSubtitles bool
}

// Assembler cuts highlight windows out of a source video into OutDir.
type Assembler struct {
	video  ports.VideoTool
	outDir string
	opts   Options
	log    zerolog.Logger
}

// New creates outDir (and any missing parents) and returns an Assembler
// writing into it.
func New(video ports.VideoTool, outDir string, opts Options, log zerolog.Logger) (*Assembler, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, failure.Wrap(failure.ErrAssembly, "assembly", "create output dir", err)
	}
	return &Assembler{video: video, outDir: outDir, opts: opts, log: log}, nil
}

func (a *Assembler) OutDir() string { return a.outDir }

// Assemble renders one clip and one metadata sidecar per highlight, indexed
// from 1 in input order. segs is only read when subtitle sidecars are on.
// The first failure stops the run; clips written before it stay on disk
// and are returned alongside the error.
func (a *Assembler) Assemble(ctx context.Context, src, label string, hs []types.Highlight, segs []types.Segment) ([]types.ClipRecord, error) {
	if len(hs) == 0 {
		return nil, nil
	}

	records := make([]types.ClipRecord, 0, len(hs))
	for i, h := range hs {
		idx := i + 1
		rec, err := a.assembleOne(ctx, src, label, idx, h, segs)
		if err != nil {
			return records, failure.Wrap(failure.ErrAssembly, "assembly", fmt.Sprintf("highlight %d", idx), err)
		}
		a.log.Info().
			Int("index", idx).
			Str("range", rec.TimestampRange).
			Str("clip", rec.OutputPath).
			Msg("clip written")
		records = append(records, rec)
	}
	return records, nil
}

// assembleOne does not check the window against the source length: a
// window past the end fails inside RenderClip.
func (a *Assembler) assembleOne(ctx context.Context, src, label string, idx int, h types.Highlight, segs []types.Segment) (types.ClipRecord, error) {
	base := filepath.Join(a.outDir, fmt.Sprintf("%s_highlight_%d", label, idx))
	rec := types.ClipRecord{
		Index:          idx,
		OutputPath:     base + ".mp4",
		MetadataPath:   base + "_metadata.json",
		TimestampRange: TimestampRange(h.StartTime, h.EndTime),
		Reason:         h.Reason,
	}

	req := ports.RenderRequest{
		Input:      src,
		Start:      seconds(h.StartTime),
		End:        seconds(h.EndTime),
		Output:     rec.OutputPath,
		VideoCodec: a.opts.VideoCodec,
		AudioCodec: a.opts.AudioCodec,
	}

	if a.opts.Subtitles {
		ass := subtitles.RenderClipASS(segs, h.StartTime, h.EndTime)
		if ass != "" {
			rec.SubtitlesPath = base + ".ass"
			if err := os.WriteFile(rec.SubtitlesPath, []byte(ass), 0o644); err != nil {
				return types.ClipRecord{}, fmt.Errorf("write subtitles: %w", err)
			}
			if a.opts.BurnSubtitles {
				req.BurnASS = rec.SubtitlesPath
			}
		}
	}

	if err := a.video.RenderClip(ctx, req); err != nil {
		return types.ClipRecord{}, err
	}

	if err := writeMetadata(rec.MetadataPath, types.ClipMetadata{
		Timestamp: rec.TimestampRange,
		Reason:    h.Reason,
	}); err != nil {
		return types.ClipRecord{}, err
	}
	return rec, nil
}

// TimestampRange formats a window as "start - end" with two decimals.
func TimestampRange(start, end float64) string {
	return fmt.Sprintf("%.2f - %.2f", start, end)
}

func writeMetadata(path string, md types.ClipMetadata) error {
	b, err := json.MarshalIndent(md, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
