package analysis

import (
	"context"
	"fmt"

	"abtest/adapters/rng"
	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/ports"
)

// Engine runs the full comparison suite for metrics.
type Engine struct {
	calc        *PairwiseCalculator
	contingency *ContingencyTest
	enumerator  *Enumerator
	rng         ports.RNGPort
	logger      *internal.Logger
}

// NewEngine wires an engine. A nil rng uses the deterministic stream adapter.
func NewEngine(rngPort ports.RNGPort, workers int, logger *internal.Logger) *Engine {
	if rngPort == nil {
		rngPort = rng.NewStreamAdapter()
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	calc := NewPairwiseCalculator()
	return &Engine{
		calc:        calc,
		contingency: NewContingencyTest(),
		enumerator:  NewEnumerator(calc, rngPort, workers),
		rng:         rngPort,
		logger:      logger,
	}
}

// Analyze analyzes every metric of the set in input order. A zero seed picks
// a fresh one, recorded on each result so the run can be reproduced.
func (e *Engine) Analyze(ctx context.Context, set *experiment.MetricSet, seed uint64) ([]experiment.MetricAnalysis, error) {
	if set == nil {
		return nil, fmt.Errorf("analyze: nil metric set")
	}
	if seed == 0 {
		seed = rng.NewBaseSeed()
	}

	results := make([]experiment.MetricAnalysis, 0, set.Len())
	for _, m := range set.Metrics() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis, err := e.AnalyzeMetric(ctx, m, seed)
		if err != nil {
			return nil, err
		}
		results = append(results, *analysis)
	}
	return results, nil
}

// AnalyzeMetric runs the pairwise comparison for two variants, or the
// contingency test plus all pairwise comparisons for three or more.
func (e *Engine) AnalyzeMetric(ctx context.Context, m *experiment.Metric, seed uint64) (*experiment.MetricAnalysis, error) {
	n := len(m.Variants)
	if n < 2 {
		return nil, core.NewMissingVariantsError(m.Name, n)
	}
	if seed == 0 {
		seed = rng.NewBaseSeed()
	}

	result := &experiment.MetricAnalysis{
		Metric:   m.Name,
		Variants: append([]experiment.Variant(nil), m.Variants...),
		Seed:     seed,
	}

	if n == 2 {
		a, b := m.Variants[0], m.Variants[1]
		stream, err := pairStream(ctx, e.rng, m.Name, a, b, seed)
		if err != nil {
			return nil, err
		}
		cmp := e.calc.Compare(a, b, stream)
		cmp.IsControlComparison = true
		result.Kind = experiment.KindAB
		result.Comparison = &cmp

		e.logger.Debug("metric %s: A/B lift=%.2f%% p=%.4g p2bb=%.3f", m.Name, cmp.Lift, cmp.PValue, cmp.ProbabilityToBeat)
		return result, nil
	}

	contingency, err := e.contingency.Run(m.Variants)
	if err != nil {
		return nil, err
	}
	all, err := e.enumerator.AllComparisons(ctx, m.Name, m.Variants, seed)
	if err != nil {
		return nil, err
	}

	result.Kind = experiment.KindABN
	result.Contingency = &contingency
	result.PairwiseComparisons = all
	result.ControlComparisons = ControlSubset(all)

	e.logger.Debug("metric %s: %d variants chi2=%.3f df=%d p=%.4g, %d comparisons",
		m.Name, n, contingency.ChiSquare, contingency.DegreesOfFreedom, contingency.PValue, len(all))
	return result, nil
}
