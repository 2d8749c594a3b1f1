package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu          sync.Mutex
	appended    map[string]int64
	elapsed     time.Duration
	total       int64
	endDuration time.Duration
}

func (mt *DefaultMetric) AddDuration(kind string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.total++
	mt.elapsed += elapsed
	mt.appended[kind]++
}

func (mt *DefaultMetric) SetTotalDuration(total time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.endDuration = total
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.endDuration
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

// Appended returns how many descriptors of each kind were appended.
func (mt *DefaultMetric) Appended() map[string]int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]int64, len(mt.appended))
	for kind, n := range mt.appended {
		res[kind] = n
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
