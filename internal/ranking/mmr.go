package ranking

import (
	"fmt"
	"math"

	"NewsRecommender/internal/domain"
)

// Diversifier selects a ranked, non-redundant subset with Maximal Marginal
// Relevance:
//
//	mmr(i) = (1-diversity) * sim(user, i) - diversity * max(sim(i, s) for s in selected)
//
// Redundancy is 0 while nothing is selected. Reference: Carbonell &
// Goldstein, SIGIR 1998.
type Diversifier struct {
	diversity float64
}

// NewDiversifier clamps diversity into [0, 1].
func NewDiversifier(diversity float64) *Diversifier {
	return &Diversifier{diversity: clampUnit(diversity)}
}

// Diversity returns the effective trade-off.
func (d *Diversifier) Diversity() float64 {
	return d.diversity
}

// Select returns candidate indices in selection order.
func (d *Diversifier) Select(embeddings []domain.Vector, user domain.Vector, topN int) ([]int, error) {
	return Select(embeddings, user, d.diversity, topN)
}

// Select runs greedy MMR and returns min(topN, len(embeddings)) indices.
// Ties go to the lowest index.
func Select(embeddings []domain.Vector, user domain.Vector, diversity float64, topN int) ([]int, error) {
	n := len(embeddings)
	if n == 0 || topN <= 0 {
		return []int{}, nil
	}
	for i, vec := range embeddings {
		if len(vec) != len(user) {
			return nil, fmt.Errorf("%w: candidate %d has %d components, user vector has %d", ErrDimensionMismatch, i, len(vec), len(user))
		}
	}

	diversity = clampUnit(diversity)
	k := topN
	if k > n {
		k = n
	}

	norms := make([]float64, n)
	relevance := make([]float64, n)
	userNorm := norm(user)
	for i, vec := range embeddings {
		norms[i] = norm(vec)
		relevance[i] = cosineWithNorms(user, vec, userNorm, norms[i])
	}

	// redundancy[i] is the max similarity of i to anything selected so far.
	redundancy := make([]float64, n)
	for i := range redundancy {
		redundancy[i] = math.Inf(-1)
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	selected := make([]int, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		bestPos, bestScore := -1, 0.0
		for pos, i := range remaining {
			red := 0.0
			if len(selected) > 0 {
				red = redundancy[i]
			}
			score := (1-diversity)*relevance[i] - diversity*red
			if bestPos < 0 || score > bestScore {
				bestPos, bestScore = pos, score
			}
		}

		chosen := remaining[bestPos]
		selected = append(selected, chosen)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)

		for _, i := range remaining {
			sim := cosineWithNorms(embeddings[i], embeddings[chosen], norms[i], norms[chosen])
			if sim > redundancy[i] {
				redundancy[i] = sim
			}
		}
	}

	return selected, nil
}

// Relevance returns the cosine similarity of each embedding to the user vector.
func Relevance(embeddings []domain.Vector, user domain.Vector) ([]float64, error) {
	out := make([]float64, len(embeddings))
	userNorm := norm(user)
	for i, vec := range embeddings {
		if len(vec) != len(user) {
			return nil, fmt.Errorf("%w: candidate %d has %d components, user vector has %d", ErrDimensionMismatch, i, len(vec), len(user))
		}
		out[i] = cosineWithNorms(user, vec, userNorm, norm(vec))
	}
	return out, nil
}
