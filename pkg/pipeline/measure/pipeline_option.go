package measure

import (
	"time"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
	name   string
	metric Metric
	now    func() time.Time
	start  time.Time
	last   time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.metric = pm.AddMetric(pm.name)
	pm.start = pm.now()
	pm.last = pm.start

	return nil
}

func (pm *pipelineMeasure) add(info *model.StageInfo) {
	now := pm.now()
	pm.metric.AddDuration(string(info.Kind), now.Sub(pm.last))
	pm.last = now
}

func (pm *pipelineMeasure) AddStage(stage *model.StageInfo) error {
	pm.add(stage)

	return nil
}

func (pm *pipelineMeasure) AddService(service *model.StageInfo) error {
	pm.add(service)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.metric.SetTotalDuration(round(pm.now().Sub(pm.start)))

	return nil
}

// PipelineMeasure returns a pipeline option recording, under name, the time between appends and the
// total time from creation to finalization.
func PipelineMeasure(m Measure, name string) model.PipelineOption {
	return &pipelineMeasure{Measure: m, name: name, now: time.Now}
}
