package highlights

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/ports"
	"github.com/forPelevin/hlextract/internal/types"
)

// Selector turns classified chunks into highlight intervals.
type Selector struct {
	classifier ports.Classifier
	reason     string
	log        zerolog.Logger
}

func NewSelector(c ports.Classifier, reason string, log zerolog.Logger) *Selector {
	return &Selector{classifier: c, reason: reason, log: log}
}

// Select classifies chunks one at a time, in order, and returns one
// Highlight per positive chunk. Adjacent positive chunks are not merged.
func (s *Selector) Select(ctx context.Context, chunks [][]types.Segment) []types.Highlight {
	var out []types.Highlight
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		positive := s.classifier.Classifies(ctx, ChunkText(chunk))
		s.log.Info().
			Int("chunk", i+1).
			Int("of", len(chunks)).
			Float64("start", chunk[0].Start).
			Float64("end", chunk[len(chunk)-1].End).
			Bool("highlight", positive).
			Msg("chunk classified")
		if !positive {
			continue
		}
		out = append(out, types.Highlight{
			StartTime: chunk[0].Start,
			EndTime:   chunk[len(chunk)-1].End,
			Reason:    s.reason,
		})
	}
	return out
}
