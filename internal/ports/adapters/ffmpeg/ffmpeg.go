package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/hlextract/internal/ports"
)

const (
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

// RenderClip cuts [Start, End] out of Input and re-encodes it. Stream copy
// is never used because highlight bounds rarely sit on keyframes.
func (a *Adapter) RenderClip(ctx context.Context, req ports.RenderRequest) error {
	args, err := renderArgs(req)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	return checkOutput(req.Output, b)
}

// checkOutput catches windows that start past the end of the source: ffmpeg
// exits 0 there but leaves an empty (or no) file.
func checkOutput(path string, out []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: no output: %w\n%s", err, string(out))
	}
	if fi.Size() == 0 {
		return fmt.Errorf("ffmpeg render clip: empty output %s\n%s", path, string(out))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	return parseDuration(string(b))
}

func renderArgs(req ports.RenderRequest) ([]string, error) {
	if req.End <= req.Start {
		return nil, errors.New("ffmpeg render clip: end must be after start")
	}
	vcodec := req.VideoCodec
	if vcodec == "" {
		vcodec = DefaultVideoCodec
	}
	acodec := req.AudioCodec
	if acodec == "" {
		acodec = DefaultAudioCodec
	}
	if IsStreamCopy(vcodec) || IsStreamCopy(acodec) {
		return nil, errors.New("ffmpeg render clip: stream copy is not supported, clips are re-encoded")
	}

	args := []string{
		"-y",
		"-ss", fmtSeconds(req.Start),
		"-to", fmtSeconds(req.End),
		"-i", req.Input,
	}
	if req.BurnASS != "" {
		args = append(args, "-vf", "subtitles="+escapeFilterPath(req.BurnASS))
	}
	args = append(args,
		"-c:v", vcodec,
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", acodec,
		"-b:a", "192k",
		req.Output,
	)
	return args, nil
}

// IsStreamCopy reports whether codec asks ffmpeg to copy the stream as-is.
func IsStreamCopy(codec string) bool {
	return strings.EqualFold(strings.TrimSpace(codec), "copy")
}

func parseDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
