package experiment

// SignificanceLevel is the fixed alpha used for every significance flag.
const SignificanceLevel = 0.05

// Interval is a closed numeric range.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Comparison is the outcome of comparing variant B against reference A.
// Rates and probabilities are fractions; Lift and LiftInterval are percentages.
type Comparison struct {
	A                   string   `json:"a"`
	B                   string   `json:"b"`
	RateA               float64  `json:"rate_a"`
	RateB               float64  `json:"rate_b"`
	Difference          float64  `json:"difference"`
	Lift                float64  `json:"lift"`
	ZScore              float64  `json:"z_score"`
	PValue              float64  `json:"p_value"`
	ProbabilityToBeat   float64  `json:"p2bb"`
	LiftInterval        Interval `json:"lift_interval"`
	Significant         bool     `json:"significant"`
	IsControlComparison bool     `json:"is_control_comparison"`
}

// ContingencyResult is the omnibus chi-square test across all variants.
type ContingencyResult struct {
	ChiSquare        float64 `json:"chi_square"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	CramersV         float64 `json:"cramers_v"`
	Significant      bool    `json:"significant"`
}

// AnalysisKind distinguishes two-variant from multi-variant analyses.
type AnalysisKind string

const (
	KindAB  AnalysisKind = "ab"
	KindABN AnalysisKind = "abn"
)

// MetricAnalysis holds everything computed for one metric. Comparison is set
// for two variants; Contingency and both comparison lists for three or more.
type MetricAnalysis struct {
	Metric              string             `json:"metric"`
	Kind                AnalysisKind       `json:"kind"`
	Variants            []Variant          `json:"variants"`
	Comparison          *Comparison        `json:"comparison,omitempty"`
	Contingency         *ContingencyResult `json:"contingency,omitempty"`
	ControlComparisons  []Comparison       `json:"control_comparisons,omitempty"`
	PairwiseComparisons []Comparison       `json:"pairwise_comparisons,omitempty"`
	Seed                uint64             `json:"seed"`
}

// Baseline returns the control variant.
func (a *MetricAnalysis) Baseline() (Variant, bool) {
	if len(a.Variants) == 0 {
		return Variant{}, false
	}
	return a.Variants[0], true
}
