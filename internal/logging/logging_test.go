package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_WritesPlainConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	cl := WithComponent(l, "selector")
	cl.Info().Int("chunks", 4).Msg("classifying")

	out := buf.String()
	if !strings.Contains(out, "classifying") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "component=selector") {
		t.Fatalf("expected component field, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes for non-terminal writer, got %q", out)
	}
}

func TestNew_DebugOnlyWhenVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	ql := New(&quiet, false)
	ql.Debug().Msg("hidden")
	ll := New(&loud, true)
	ll.Debug().Msg("shown")

	if quiet.Len() != 0 {
		t.Fatalf("expected debug suppressed, got %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "shown") {
		t.Fatalf("expected debug line, got %q", loud.String())
	}
}
