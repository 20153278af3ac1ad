package highlights

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/failure"
	"github.com/forPelevin/hlextract/internal/ports"
)

// LLMClassifier asks a completion backend for a yes/no verdict on a chunk.
type LLMClassifier struct {
	backend     ports.Completer
	affirmative string
	negative    string
	log         zerolog.Logger
}

func NewLLMClassifier(backend ports.Completer, affirmative, negative string, log zerolog.Logger) *LLMClassifier {
	return &LLMClassifier{
		backend:     backend,
		affirmative: affirmative,
		negative:    negative,
		log:         log,
	}
}

// Classifies reports whether the backend answered with the affirmative
// token. A backend failure is logged and counts as a negative verdict.
func (c *LLMClassifier) Classifies(ctx context.Context, text string) bool {
	resp, err := c.backend.Complete(ctx, BuildPrompt(text, c.affirmative, c.negative))
	if err != nil {
		err = failure.Wrap(failure.ErrClassification, "classify", "complete", err)
		c.log.Warn().Err(err).Msg("chunk classification failed, treating as negative")
		return false
	}
	ok := IsAffirmative(resp, c.affirmative)
	c.log.Debug().Str("response", oneLine(resp, 120)).Bool("highlight", ok).Msg("verdict")
	return ok
}

// IsAffirmative normalizes a free-text answer (trim, lowercase) and reports
// whether it contains the affirmative token anywhere, so "Sim, com certeza"
// and "simulação" both count.
func IsAffirmative(response, affirmative string) bool {
	token := strings.ToLower(strings.TrimSpace(affirmative))
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(response)), token)
}

// BuildPrompt renders the strict binary instruction for one chunk of text.
func BuildPrompt(text, affirmative, negative string) string {
	yes := strings.ToUpper(strings.TrimSpace(affirmative))
	no := strings.ToUpper(strings.TrimSpace(negative))
	return fmt.Sprintf(`**Instruções Estritas**:
1. Analise o texto abaixo.
2. Responda APENAS com '%[1]s' ou '%[2]s'.
3. Responda '%[1]s' somente se o texto contiver:
   - Emoção forte (alegria, raiva, surpresa)
   - Informação importante (dica, conclusão, revelação)
   - Resumo ou chamada para ação

Texto: %[3]s
`, yes, no, text)
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
