package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

var (
	generatorSchema = pipeline.Schema{
		Type: "GenAlg",
		Kind: model.GeneratorKind,
		Properties: []pipeline.PropertySpec{
			{Name: "SignalProvider", Type: model.ToolType},
			{Name: "VertexSmearingTool", Type: model.ToolType},
		},
		Handles: []pipeline.HandleSpec{{Name: "hepmc", Direction: model.Writer, Default: "hepmc"}},
	}
	converterSchema = pipeline.Schema{
		Type: "HepMCToEDMConverter",
		Kind: model.ConverterKind,
		Properties: []pipeline.PropertySpec{
			{Name: "hepmcStatusList", Type: model.IntListType, Default: []int{1}},
		},
		Handles: []pipeline.HandleSpec{
			{Name: "hepmc", Direction: model.Reader, Default: "hepmc"},
			{Name: "GenParticles", Direction: model.Writer, Default: "GenParticles"},
		},
	}
	filterSchema = pipeline.Schema{
		Type: "GenParticleFilter",
		Kind: model.FilterKind,
		Properties: []pipeline.PropertySpec{
			{Name: "accept", Type: model.IntListType, Default: []int{1}},
		},
		Handles: []pipeline.HandleSpec{
			{Name: "GenParticles", Direction: model.Reader, Default: "GenParticles"},
			{Name: "GenParticlesFiltered", Direction: model.Writer, Default: "GenParticlesFiltered"},
		},
	}
	smearSchema = pipeline.Schema{
		Type: "GaussSmearVertex",
		Kind: model.ToolKind,
		Properties: []pipeline.PropertySpec{
			{Name: "xVertexSigma", Type: model.LengthType},
			{Name: "tVertexSigma", Type: model.TimeType},
		},
	}
	writerSchema = pipeline.Schema{
		Type: "PodioOutput",
		Kind: model.WriterKind,
		Properties: []pipeline.PropertySpec{
			{Name: "filename", Type: model.StringType, Default: "output.root"},
			{Name: "outputCommands", Type: model.StringListType, Default: []string{"keep *"}},
		},
	}
	dataSvcSchema = pipeline.Schema{Type: "k4DataSvc", Kind: model.ServiceKind}
	geoSvcSchema  = pipeline.Schema{Type: "GeoSvc", Kind: model.ServiceKind}
	simSvcSchema  = pipeline.Schema{Type: "SimG4Svc", Kind: model.ServiceKind, Requires: []string{"GeoSvc"}}
)

func newDescriptor(t *testing.T, schema pipeline.Schema, name string, props ...pipeline.Property) *pipeline.Descriptor {
	t.Helper()

	desc, err := pipeline.NewDescriptor(schema, name, props...)
	require.NoError(t, err)

	return desc
}

// recorder is a pipeline option remembering what it was told.
type recorder struct {
	newCalls int
	stages   []string
	services []string
	finished bool
	err      error
}

func (r *recorder) New() error {
	r.newCalls++

	return nil
}

func (r *recorder) AddStage(stage *model.StageInfo) error {
	if r.err != nil {
		return r.err
	}

	r.stages = append(r.stages, stage.Name)

	return nil
}

func (r *recorder) AddService(service *model.StageInfo) error {
	r.services = append(r.services, service.Name)

	return nil
}

func (r *recorder) Finish() error {
	r.finished = true

	return nil
}

var _ model.PipelineOption = (*recorder)(nil)
