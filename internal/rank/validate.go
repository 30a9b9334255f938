package rank

import "math"

// batchScore is one entry of a model reply.
type batchScore struct {
	Index      int     `json:"index"`
	Importance float64 `json:"importance"`
}

// validateScores drops entries outside the batch, clamps importance to
// [0, 1] and keeps the first score seen for each index. Missing sentences
// score 0.
func validateScores(raw []batchScore, n int) []float64 {
	out := make([]float64, n)
	seen := make([]bool, n)
	for _, s := range raw {
		if s.Index < 0 || s.Index >= n || seen[s.Index] {
			continue
		}
		if math.IsNaN(s.Importance) {
			continue
		}
		out[s.Index] = math.Min(1, math.Max(0, s.Importance))
		seen[s.Index] = true
	}
	return out
}
