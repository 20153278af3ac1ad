package highlights

import (
	"context"
	"regexp"
	"strings"
)

var (
	reNum     = regexp.MustCompile(`\b\d+(?:[\.,]\d+)?\b`)
	reInfo    = regexp.MustCompile(`(?i)\b(important|key|secret|mistake|tip|remember|importante|segredo|dica|erro|lembre|revela\w*)\b`)
	reEmotion = regexp.MustCompile(`(?i)\b(amazing|incredible|wow|unbelievable|hate|love|incr[ií]vel|uau|nossa|absurdo|odeio|amo)\b`)
	reAction  = regexp.MustCompile(`(?i)\b(subscribe|in\s+summary|to\s+sum\s+up|conclusion|inscreva\w*|resumindo|em\s+resumo|conclus[aã]o)\b`)
)

// Score returns (info, hook) in range [0..10]. Info rewards numbers and
// informational cue words; hook rewards emotional cues, exclamations,
// questions and summary or call-to-action phrases.
func Score(text string) (float64, float64) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, 0
	}

	info := float64(len(reNum.FindAllStringIndex(t, -1))) * 0.4
	info += float64(len(reInfo.FindAllStringIndex(t, -1))) * 0.9
	// small length penalty
	info -= 0.0006 * float64(len([]rune(t)))

	hook := float64(len(reEmotion.FindAllStringIndex(t, -1))) * 0.9
	hook += float64(len(reAction.FindAllStringIndex(t, -1))) * 1.2
	hook += float64(strings.Count(t, "?")) * 0.3
	hook += float64(strings.Count(t, "!")) * 0.7

	return clamp(info, 0, 10), clamp(hook, 0, 10)
}

// ScoreClassifier is a deterministic, offline Classifier: a chunk is a
// highlight when its combined score reaches Threshold.
type ScoreClassifier struct {
	Threshold float64
}

func (c ScoreClassifier) Classifies(_ context.Context, text string) bool {
	info, hook := Score(text)
	return info+hook > 0 && info+hook >= c.Threshold
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
