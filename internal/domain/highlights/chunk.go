package highlights

import (
	"strings"

	"github.com/forPelevin/hlextract/internal/types"
)

// Chunk splits segs into consecutive groups of at most size segments.
// The groups are sub-slices of segs (capacity-limited so appends never
// bleed into the next chunk), cover every segment exactly once and keep the
// original order. Empty input or size < 1 yields no chunks.
func Chunk(segs []types.Segment, size int) [][]types.Segment {
	if size < 1 || len(segs) == 0 {
		return nil
	}
	out := make([][]types.Segment, 0, (len(segs)+size-1)/size)
	for i := 0; i < len(segs); i += size {
		end := min(i+size, len(segs))
		out = append(out, segs[i:end:end])
	}
	return out
}

// ChunkText joins the chunk's segment texts with single spaces, in order.
func ChunkText(chunk []types.Segment) string {
	parts := make([]string, 0, len(chunk))
	for _, s := range chunk {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
