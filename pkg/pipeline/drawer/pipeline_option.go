package drawer

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	writers map[string]string
}

func (pd *pipelineDrawer) New() error {
	pd.writers = make(map[string]string)

	return nil
}

func (pd *pipelineDrawer) AddStage(stage *model.StageInfo) error {
	err := pd.AddStep(stage.Name, stage.Type, stage.Kind)
	if err != nil {
		return err
	}

	for _, path := range stage.Reads() {
		producer, ok := pd.writers[path]
		if !ok {
			err = pd.AddDangling(stage.Name, path)
			if err != nil {
				return err
			}

			continue
		}

		err = pd.AddLink(producer, stage.Name, path)
		if err != nil {
			return err
		}
	}

	for _, path := range stage.Writes() {
		pd.writers[path] = stage.Name
	}

	return nil
}

func (pd *pipelineDrawer) AddService(service *model.StageInfo) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns a pipeline option drawing every appended stage and the paths between them.
// The drawing is written when the pipeline is finalized.
func PipelineDrawer(drawer Drawer) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer}
}
