package app

import (
	"context"
	"fmt"
	"time"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/internal/analysis"
	"abtest/internal/errors"
	"abtest/internal/parser"
	"abtest/internal/sharing"
	"abtest/ports"
)

// AnalysisService parses experiment input and runs the comparison engine
type AnalysisService struct {
	engine        *analysis.Engine
	logger        *internal.Logger
	defaultSeed   uint64
	maxInputBytes int64
}

// AnalysisResult is the complete output of one analysis request
type AnalysisResult struct {
	ID        core.AnalysisID             `json:"id"`
	InputHash core.InputHash              `json:"input_hash"`
	Metrics   []experiment.MetricAnalysis `json:"metrics"`
	Seed      uint64                      `json:"seed"`
	RuntimeMs int64                       `json:"runtime_ms"`
}

// AnalysisOptions tune an AnalysisService
type AnalysisOptions struct {
	DefaultSeed   uint64 // used when a request passes seed 0; 0 keeps runs random
	MaxInputBytes int64  // 0 disables the limit
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(engine *analysis.Engine, logger *internal.Logger, opts AnalysisOptions) *AnalysisService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &AnalysisService{
		engine:        engine,
		logger:        logger,
		defaultSeed:   opts.DefaultSeed,
		maxInputBytes: opts.MaxInputBytes,
	}
}

// ParseText validates raw text input into a metric set
func (s *AnalysisService) ParseText(text string) (*experiment.MetricSet, error) {
	if s.maxInputBytes > 0 && int64(len(text)) > s.maxInputBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("input is %d bytes, limit is %d", len(text), s.maxInputBytes))
	}
	set, err := parser.Parse(text)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if set.Len() == 0 {
		return nil, errors.InvalidInput("input contains no metrics")
	}
	return set, nil
}

// AnalyzeText parses text and analyzes every metric in it
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string, seed uint64) (*AnalysisResult, error) {
	set, err := s.ParseText(text)
	if err != nil {
		s.logger.Debug("rejected analysis input: %v", err)
		return nil, err
	}
	return s.AnalyzeSet(ctx, set, seed)
}

// AnalyzeSource reads metrics from a source such as a spreadsheet and analyzes them
func (s *AnalysisService) AnalyzeSource(ctx context.Context, source ports.MetricSource, seed uint64) (*AnalysisResult, error) {
	set, err := source.ReadMetrics(ctx)
	if err != nil {
		if core.IsParseError(err) {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		return nil, errors.Wrap(err, "failed to read metrics")
	}
	if set.Len() == 0 {
		return nil, errors.InvalidInput("input contains no metrics")
	}
	return s.AnalyzeSet(ctx, set, seed)
}

// AnalyzeSet analyzes an already validated metric set
func (s *AnalysisService) AnalyzeSet(ctx context.Context, set *experiment.MetricSet, seed uint64) (*AnalysisResult, error) {
	startTime := time.Now()

	if seed == 0 {
		seed = s.defaultSeed
	}

	hash, err := InputHashOf(set)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint input")
	}

	analyses, err := s.engine.Analyze(ctx, set, seed)
	if err != nil {
		if core.IsParseError(err) {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		return nil, errors.Wrap(err, "analysis failed")
	}

	result := &AnalysisResult{
		ID:        core.NewAnalysisID(),
		InputHash: hash,
		Metrics:   analyses,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}
	if len(analyses) > 0 {
		result.Seed = analyses[0].Seed
	}

	s.logger.Info("analysis %s: %d metrics, input %s, seed %d, %dms",
		result.ID, len(analyses), hash.Short(), result.Seed, result.RuntimeMs)
	return result, nil
}

// InputHashOf fingerprints a metric set by its share encoding, which is
// deterministic for equal sets.
func InputHashOf(set *experiment.MetricSet) (core.InputHash, error) {
	token, err := sharing.Encode(set)
	if err != nil {
		return "", err
	}
	return core.NewInputHash([]byte(token)), nil
}
