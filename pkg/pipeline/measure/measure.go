package measure

import (
	"sort"
	"sync"
)

type DefaultMeasure struct {
	mu      sync.Mutex
	metrics map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		metrics: make(map[string]Metric),
	}
}

// AddMetric registers a metric under name, replacing any previous one. It is safe for concurrent use.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	mt := &DefaultMetric{appended: make(map[string]int64)}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.metrics[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make(map[string]Metric, len(m.metrics))
	for name, mt := range m.metrics {
		res[name] = mt
	}

	return res
}

// Names returns the metric names sorted.
func (m *DefaultMeasure) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.metrics))
	for name := range m.metrics {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

var _ Measure = (*DefaultMeasure)(nil)
