package ports

import (
	"context"

	"abtest/domain/experiment"
)

// MetricSource loads metrics from some external representation.
type MetricSource interface {
	ReadMetrics(ctx context.Context) (*experiment.MetricSet, error)
}
