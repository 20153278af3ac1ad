package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/hlextract/internal/types"
)

// RenderClipASS renders the transcript segments overlapping [start, end]
// as ASS dialogue lines with clip-local timestamps. Returns "" when no
// segment with text falls inside the window.
func RenderClipASS(segs []types.Segment, start, end float64) string {
	cues := collectCues(segs, dur(start), dur(end))
	if len(cues) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Highlight,,0,0,0,,%s\n", assTime(c.Start), assTime(c.End), c.Text)
	}
	return b.String()
}

type cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

func collectCues(segs []types.Segment, start, end time.Duration) []cue {
	var out []cue
	for _, s := range segs {
		ss := dur(s.Start)
		se := dur(s.End)
		if se <= start || ss >= end {
			continue
		}
		text := sanitizeASS(s.Text)
		if text == "" {
			continue
		}
		ss = max(ss, start)
		se = min(se, end)
		out = append(out, cue{Start: ss - start, End: se - start, Text: text})
	}
	return out
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Highlight, Inter, 64, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,4,2,2, 80,80,70,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

// sanitizeASS escapes override-block braces and flattens line breaks.
func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
