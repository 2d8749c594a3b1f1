package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

func fakeClock(step time.Duration) func() time.Time {
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return func() time.Time {
		current = current.Add(step)

		return current
	}
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := NewDefaultMeasure()
	opt := PipelineMeasure(m, "pythia.yaml")
	opt.(*pipelineMeasure).now = fakeClock(10 * time.Millisecond)

	require.NoError(t, opt.New())
	require.NoError(t, opt.AddService(&model.StageInfo{Kind: model.ServiceKind, Name: "EventDataSvc"}))
	require.NoError(t, opt.AddStage(&model.StageInfo{Kind: model.GeneratorKind, Name: "Pythia8"}))
	require.NoError(t, opt.AddStage(&model.StageInfo{Kind: model.ConverterKind, Name: "HepMCToEDMConverter"}))
	require.NoError(t, opt.Finish())

	mt := m.GetMetric("pythia.yaml")
	require.NotNil(t, mt)
	assert.Equal(t, 10*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, 40*time.Millisecond, mt.GetTotalDuration())
	assert.Equal(t, map[string]int64{"service": 1, "generator": 1, "converter": 1}, mt.Appended())
	assert.Equal(t, []string{"pythia.yaml"}, m.Names())
}

func TestMetricWithoutAppends(t *testing.T) {
	t.Parallel()

	m := NewDefaultMeasure()
	mt := m.AddMetric("empty")
	assert.Zero(t, mt.AVGDuration())
	assert.Empty(t, mt.Appended())
	assert.Len(t, m.AllMetrics(), 1)
}

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Duration
	}{
		{1500 * time.Nanosecond, 2 * time.Microsecond},
		{1234567 * time.Nanosecond, time.Millisecond},
		{1600 * time.Millisecond, 2 * time.Second},
		{90 * time.Second, 2 * time.Minute},
		{500 * time.Nanosecond, 500 * time.Nanosecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, round(tt.in), tt.in.String())
	}
}
