package ranking

// Policy defaults. They are knobs, not constants of the algorithm.
const (
	DefaultCategoryWeight  = 0.2
	DefaultLikesWeight     = 0.6
	DefaultHistoryWeight   = 0.2
	DefaultDecayRate       = 0.1
	DefaultRejectThreshold = 0.15
	DefaultDiversity       = 0.3
)

// Params groups the tunable parameters of profile fusion, classification and selection.
type Params struct {
	// CategoryWeight, LikesWeight and HistoryWeight are applied only when the
	// user has likes or history; otherwise the category vector is used alone.
	CategoryWeight float64
	LikesWeight    float64
	HistoryWeight  float64

	// DecayRate shapes the history weights w_i = 1 / (1 + DecayRate*i).
	DecayRate float64

	// RejectThreshold is the minimum best-label similarity; below it the
	// article is labelled General.
	RejectThreshold float64

	// Diversity is the MMR trade-off: 0 ranks by relevance, 1 by novelty.
	Diversity float64

	// DefaultDescriptor is embedded when no declared category is usable.
	DefaultDescriptor string
}

// DefaultParams returns the canonical policy.
func DefaultParams() Params {
	return Params{
		CategoryWeight:    DefaultCategoryWeight,
		LikesWeight:       DefaultLikesWeight,
		HistoryWeight:     DefaultHistoryWeight,
		DecayRate:         DefaultDecayRate,
		RejectThreshold:   DefaultRejectThreshold,
		Diversity:         DefaultDiversity,
		DefaultDescriptor: DefaultDescriptor,
	}
}

// WithDefaults fills the policy gaps: the zero value becomes DefaultParams,
// all-zero fusion weights take the defaults, and Diversity is clamped to [0,1].
func (p Params) WithDefaults() Params {
	if p == (Params{}) {
		return DefaultParams()
	}
	if p.CategoryWeight == 0 && p.LikesWeight == 0 && p.HistoryWeight == 0 {
		p.CategoryWeight = DefaultCategoryWeight
		p.LikesWeight = DefaultLikesWeight
		p.HistoryWeight = DefaultHistoryWeight
	}
	if p.DecayRate < 0 {
		p.DecayRate = 0
	}
	if p.DefaultDescriptor == "" {
		p.DefaultDescriptor = DefaultDescriptor
	}
	p.Diversity = clampUnit(p.Diversity)
	return p
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
