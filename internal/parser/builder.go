package parser

import (
	"abtest/domain/core"
	"abtest/domain/experiment"
)

// Builder accumulates metrics and variants while enforcing the data-model
// invariants. Every input source (text, spreadsheet, share token) goes
// through it, so they all reject the same inputs.
type Builder struct {
	set     *experiment.MetricSet
	current *experiment.Metric
	names   map[string]struct{}
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{set: experiment.NewMetricSet()}
}

// StartMetric opens a new metric context. line is the raw source line used in
// error messages.
func (b *Builder) StartMetric(name, line string) error {
	metric := &experiment.Metric{Name: name}
	if !b.set.Add(metric) {
		return &core.DuplicateNameError{Metric: name, Line: line}
	}
	b.current = metric
	b.names = make(map[string]struct{})
	return nil
}

// AddVariant appends a variant to the open metric.
func (b *Builder) AddVariant(name string, trials, successes int64, line string) error {
	if b.current == nil {
		return core.NewFormatError(line, "variant line before any metric name")
	}
	if name == "" {
		return core.NewFormatError(line, "missing variant name")
	}
	if err := checkCounts(trials, successes, line); err != nil {
		return err
	}
	if _, dup := b.names[name]; dup {
		return &core.DuplicateNameError{Metric: b.current.Name, Variant: name, Line: line}
	}

	b.names[name] = struct{}{}
	b.current.Variants = append(b.current.Variants, experiment.Variant{
		Name:      name,
		Trials:    trials,
		Successes: successes,
	})
	return nil
}

// Finish validates that every metric has at least two variants, reporting
// the first offender in input order.
func (b *Builder) Finish() (*experiment.MetricSet, error) {
	for _, m := range b.set.Metrics() {
		if len(m.Variants) < 2 {
			return nil, core.NewMissingVariantsError(m.Name, len(m.Variants))
		}
	}
	return b.set, nil
}

func checkCounts(trials, successes int64, line string) error {
	switch {
	case trials < 0 || successes < 0:
		return core.NewRangeError(line, trials, successes, "counts must be non-negative")
	case trials == 0:
		return core.NewRangeError(line, trials, successes, "trials must be positive")
	case successes > trials:
		return core.NewRangeError(line, trials, successes, "successes exceed trials")
	}
	return nil
}
