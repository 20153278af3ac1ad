package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

var (
	ErrAcquisition     = errors.New("acquisition error")
	ErrTranscription   = errors.New("transcription error")
	ErrEmptyTranscript = errors.New("empty transcript")
	ErrClassification  = errors.New("classification error")
	ErrAssembly        = errors.New("assembly error")
	ErrCleanup         = errors.New("cleanup error")
	ErrMediaInUse      = errors.New("media still in use")
	ErrConfiguration   = errors.New("configuration error")
)

// ErrPipeline tags failures wrapped without a stage marker.
var ErrPipeline = errors.New("pipeline error")

// Wrap tags err with marker and a "stage: operation" detail so callers can
// classify it with errors.Is.
func Wrap(marker error, stage, operation string, err error) error {
	detail := buildDetail(stage, operation)
	if marker == nil {
		marker = ErrPipeline
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsInUse reports whether a removal failure means another process still
// holds the file. Permission errors count too: Windows reports an open file
// that way. On Unix they usually mean a directory permission problem, which
// still leaves the file in place.
func IsInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMediaInUse) {
		return true
	}
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETXTBSY) ||
		errors.Is(err, fs.ErrPermission)
}

func buildDetail(stage, operation string) string {
	parts := make([]string, 0, 2)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
