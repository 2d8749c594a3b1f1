package measure

import "time"

// Measure collects one metric per assembled pipeline.
type Measure interface {
	AddMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records how long a pipeline took to assemble.
type Metric interface {
	// AddDuration records the time spent building one appended descriptor.
	AddDuration(kind string, elapsed time.Duration)
	AVGDuration() time.Duration
	Appended() map[string]int64
	SetTotalDuration(total time.Duration)
	GetTotalDuration() time.Duration
}
