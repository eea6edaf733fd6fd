package experiment

// Variant is one arm of an experiment: Trials observations, Successes of
// which converted. Values are immutable once built by the parser.
type Variant struct {
	Name      string `json:"name"`
	Trials    int64  `json:"n"`
	Successes int64  `json:"x"`
}

// Rate returns the observed proportion x/n, or 0 when n is 0.
func (v Variant) Rate() float64 {
	if v.Trials == 0 {
		return 0
	}
	return float64(v.Successes) / float64(v.Trials)
}

// Failures returns n - x.
func (v Variant) Failures() int64 {
	return v.Trials - v.Successes
}

// Metric groups the variants tested against each other. Variants keep input
// order and position 0 is the control.
type Metric struct {
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Control returns the first listed variant.
func (m *Metric) Control() (Variant, bool) {
	if len(m.Variants) == 0 {
		return Variant{}, false
	}
	return m.Variants[0], true
}

// Baseline is the legacy alias for the control of a two-variant metric.
func (m *Metric) Baseline() (Variant, bool) {
	if len(m.Variants) != 2 {
		return Variant{}, false
	}
	return m.Variants[0], true
}

// Treatment is the legacy alias for the second variant of a two-variant metric.
func (m *Metric) Treatment() (Variant, bool) {
	if len(m.Variants) != 2 {
		return Variant{}, false
	}
	return m.Variants[1], true
}

// Variant looks up a variant by name.
func (m *Metric) Variant(name string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// MetricSet is an insertion-ordered mapping from metric name to Metric.
type MetricSet struct {
	metrics []*Metric
	index   map[string]int
}

// NewMetricSet creates an empty set.
func NewMetricSet() *MetricSet {
	return &MetricSet{index: make(map[string]int)}
}

// Add appends m; it reports false if a metric with the same name exists.
func (s *MetricSet) Add(m *Metric) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, exists := s.index[m.Name]; exists {
		return false
	}
	s.index[m.Name] = len(s.metrics)
	s.metrics = append(s.metrics, m)
	return true
}

// Get returns the metric with the given name.
func (s *MetricSet) Get(name string) (*Metric, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.metrics[i], true
}

// Metrics returns metrics in input order.
func (s *MetricSet) Metrics() []*Metric {
	out := make([]*Metric, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// Names returns metric names in input order.
func (s *MetricSet) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name
	}
	return names
}

// Len returns the number of metrics.
func (s *MetricSet) Len() int {
	return len(s.metrics)
}
