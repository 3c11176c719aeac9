package ranking

import (
	"fmt"
	"math"

	"NewsRecommender/internal/domain"
)

// Cosine returns the cosine similarity of a and b. A zero vector has
// similarity 0 with everything.
func Cosine(a, b domain.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return cosine(a, b), nil
}

func cosine(a, b domain.Vector) float64 {
	return cosineWithNorms(a, b, norm(a), norm(b))
}

func cosineWithNorms(a, b domain.Vector, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

func dot(a, b domain.Vector) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v domain.Vector) float64 {
	return math.Sqrt(dot(v, v))
}

// Zero returns the zero vector of the given dimensionality.
func Zero(dim int) domain.Vector {
	return make(domain.Vector, dim)
}

// Mean averages vectors componentwise.
func Mean(vectors []domain.Vector) (domain.Vector, error) {
	weights := make([]float64, len(vectors))
	for i := range weights {
		weights[i] = 1
	}
	return WeightedMean(vectors, weights)
}

// WeightedMean divides the weighted vector sum by the sum of weights.
func WeightedMean(vectors []domain.Vector, weights []float64) (domain.Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("mean of empty vector set")
	}
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("got %d weights for %d vectors", len(weights), len(vectors))
	}
	dim, err := CheckDimensions(vectors...)
	if err != nil {
		return nil, err
	}

	acc := make([]float64, dim)
	var total float64
	for i, vec := range vectors {
		w := weights[i]
		total += w
		for j, x := range vec {
			acc[j] += w * float64(x)
		}
	}
	if total == 0 {
		return Zero(dim), nil
	}

	out := make(domain.Vector, dim)
	for j := range acc {
		out[j] = float32(acc[j] / total)
	}
	return out, nil
}

// Blend returns the plain weighted sum of vectors (no normalization).
func Blend(vectors []domain.Vector, weights []float64) (domain.Vector, error) {
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("got %d weights for %d vectors", len(weights), len(vectors))
	}
	dim, err := CheckDimensions(vectors...)
	if err != nil {
		return nil, err
	}
	acc := make([]float64, dim)
	for i, vec := range vectors {
		for j, x := range vec {
			acc[j] += weights[i] * float64(x)
		}
	}
	out := make(domain.Vector, dim)
	for j := range acc {
		out[j] = float32(acc[j])
	}
	return out, nil
}

// RecencyWeights returns w_i = 1 / (1 + decay*i) for i in [0, n).
func RecencyWeights(n int, decay float64) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / (1 + decay*float64(i))
	}
	return weights
}

// CheckDimensions verifies every vector has the same non-zero length and returns it.
func CheckDimensions(vectors ...domain.Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	for i, vec := range vectors[1:] {
		if len(vec) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d components, want %d", ErrDimensionMismatch, i+1, len(vec), dim)
		}
	}
	return dim, nil
}

func isZero(v domain.Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
