package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"
)

func TestWrap_KeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrAssembly, "assemble", "render clip 2", cause)

	if !errors.Is(err, ErrAssembly) {
		t.Fatalf("expected ErrAssembly marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	want := "assembly error: assemble: render clip 2: exit status 1"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrap_EmptyDetail(t *testing.T) {
	err := Wrap(ErrTranscription, " ", "", nil)
	if err.Error() != "transcription error: pipeline failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrap_NilMarkerIsNeutral(t *testing.T) {
	err := Wrap(nil, "assembly", "render", errors.New("boom"))
	if !errors.Is(err, ErrPipeline) {
		t.Fatalf("expected ErrPipeline, got %v", err)
	}
	for _, stage := range []error{ErrAcquisition, ErrTranscription, ErrAssembly, ErrCleanup} {
		if errors.Is(err, stage) {
			t.Fatalf("nil marker must not map to %v", stage)
		}
	}
	if err.Error() != "pipeline error: assembly: render: boom" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsInUse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy", &fs.PathError{Op: "remove", Path: "x", Err: syscall.EBUSY}, true},
		{"text busy", &fs.PathError{Op: "remove", Path: "x", Err: syscall.ETXTBSY}, true},
		{"permission", &fs.PathError{Op: "remove", Path: "x", Err: fs.ErrPermission}, true},
		{"marker", fmt.Errorf("wrapped: %w", ErrMediaInUse), true},
		{"not exist", &fs.PathError{Op: "remove", Path: "x", Err: os.ErrNotExist}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInUse(tt.err); got != tt.want {
				t.Fatalf("IsInUse(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
