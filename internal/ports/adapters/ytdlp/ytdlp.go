package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

const DefaultFormat = "best[ext=mp4]"

type Adapter struct {
	bin    string
	format string
}

func New(binPath, format string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if format == "" {
		format = DefaultFormat
	}
	return &Adapter{bin: binPath, format: format}
}

// Download fetches rawURL into dest, which is written as-is (no template
// expansion) and must not exist yet.
func (a *Adapter) Download(ctx context.Context, rawURL, dest string) error {
	if err := ValidateURL(rawURL); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.bin, downloadArgs(rawURL, dest, a.format)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp failed: %w\n%s", err, strings.TrimSpace(string(b)))
	}
	fi, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("yt-dlp finished without output: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("yt-dlp wrote an empty file: %s", dest)
	}
	return nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("invalid url %q: http or https is required", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: host is required", rawURL)
	}
	return nil
}

func downloadArgs(rawURL, dest, format string) []string {
	// "%" in dest would be read as an output template field.
	out := strings.ReplaceAll(dest, "%", "%%")
	return []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--no-part",
		"-f", format,
		"-o", out,
		"--",
		strings.TrimSpace(rawURL),
	}
}
