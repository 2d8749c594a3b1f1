package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultEvtMax, pipe.EvtMax)
	assert.Equal(t, pipeline.DefaultEvtSel, pipe.EvtSel)
	assert.Equal(t, model.Info, pipe.OutputLevel)
	assert.Empty(t, pipe.Stages())

	pipe, err = pipeline.New(pipeline.WithRunParameters(2, "NONE", model.Debug))
	require.NoError(t, err)
	assert.Equal(t, 2, pipe.EvtMax)
	assert.Equal(t, model.Debug, pipe.OutputLevel)
}

func TestAddStageNilPipe(t *testing.T) {
	t.Parallel()

	var pipe *pipeline.Pipeline
	err := pipe.AddStage(newDescriptor(t, writerSchema, "out"))
	assert.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddStageNilDescriptor(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	assert.ErrorIs(t, pipe.AddStage(nil), pipeline.ErrDescriptorMustBeSet)
	assert.ErrorIs(t, pipe.AddService(nil), pipeline.ErrDescriptorMustBeSet)
}

func TestGeneratorConverterFilter(t *testing.T) {
	t.Parallel()

	gen := newDescriptor(t, generatorSchema, "Pythia8")
	require.NoError(t, gen.SetPath("hepmc", "hepmc"))

	conv := newDescriptor(t, converterSchema, "")
	require.NoError(t, pipeline.Link("hepmc", gen, conv))
	require.NoError(t, conv.SetPath("GenParticles", "GenParticles"))

	filter := newDescriptor(t, filterSchema, "StableParticles", pipeline.P("accept", []int{1}))
	require.NoError(t, pipeline.Link("GenParticles", conv, filter))

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipe.AddStage(gen))
	require.NoError(t, pipe.AddStage(conv))
	require.NoError(t, pipe.AddStage(filter))
	require.NoError(t, pipe.Finalize())

	stages := pipe.Stages()
	require.Len(t, stages, 3)
	assert.Same(t, gen, stages[0])
	assert.Same(t, conv, stages[1])
	assert.Same(t, filter, stages[2])

	produced, err := conv.Path("GenParticles")
	require.NoError(t, err)
	consumed, err := filter.Path("GenParticles")
	require.NoError(t, err)
	assert.Equal(t, produced, consumed)

	accept, ok := filter.Get("accept")
	require.True(t, ok)
	assert.Equal(t, []int{1}, accept)
}

func TestStageOrderIsAppendOrder(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	names := []string{"out", "b", "a", "c"}
	for _, name := range names {
		require.NoError(t, pipe.AddStage(newDescriptor(t, writerSchema, name)))
	}

	stages := pipe.Stages()
	require.Len(t, stages, len(names))
	for i, name := range names {
		assert.Equal(t, name, stages[i].Name())
	}
}

func TestAddStageRejects(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	require.NoError(t, pipe.AddStage(newDescriptor(t, writerSchema, "out")))
	require.ErrorIs(t, pipe.AddStage(newDescriptor(t, writerSchema, "out")), pipeline.ErrDuplicateName)
	require.ErrorIs(t, pipe.AddStage(newDescriptor(t, smearSchema, "")), pipeline.ErrWrongKind)
	require.ErrorIs(t, pipe.AddStage(newDescriptor(t, dataSvcSchema, "EventDataSvc")), pipeline.ErrWrongKind)
	require.ErrorIs(t, pipe.AddService(newDescriptor(t, writerSchema, "x")), pipeline.ErrWrongKind)

	assert.Len(t, pipe.Stages(), 1)
}

func TestServices(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	require.NoError(t, pipe.AddExternalService("RndmGenSvc"))
	require.NoError(t, pipe.AddService(newDescriptor(t, dataSvcSchema, "EventDataSvc")))
	require.ErrorIs(t, pipe.AddExternalService("RndmGenSvc"), pipeline.ErrDuplicateName)
	require.ErrorIs(t, pipe.AddExternalService(""), pipeline.ErrInvalidName)

	services := pipe.Services()
	require.Len(t, services, 2)
	assert.Equal(t, "RndmGenSvc", services[0].Name)
	assert.Nil(t, services[0].Descriptor)
	assert.Equal(t, "EventDataSvc", services[1].Name)
	assert.NotNil(t, services[1].Descriptor)
}

func TestFinalizeLocksPipeline(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	pipe, err := pipeline.New(pipeline.WithHook(rec))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.newCalls)

	require.NoError(t, pipe.AddService(newDescriptor(t, dataSvcSchema, "EventDataSvc")))
	require.NoError(t, pipe.AddStage(newDescriptor(t, writerSchema, "out")))
	require.NoError(t, pipe.Finalize())

	assert.True(t, pipe.Finalized())
	assert.True(t, rec.finished)
	assert.Equal(t, []string{"out"}, rec.stages)
	assert.Equal(t, []string{"EventDataSvc"}, rec.services)

	require.ErrorIs(t, pipe.AddStage(newDescriptor(t, writerSchema, "out2")), pipeline.ErrPipelineFinalized)
	require.ErrorIs(t, pipe.AddExternalService("RndmGenSvc"), pipeline.ErrPipelineFinalized)
	require.ErrorIs(t, pipe.Finalize(), pipeline.ErrPipelineFinalized)
}

func TestHookErrorStopsAppend(t *testing.T) {
	t.Parallel()

	rec := &recorder{err: assert.AnError}
	pipe, err := pipeline.New(pipeline.WithHook(rec))
	require.NoError(t, err)

	err = pipe.AddStage(newDescriptor(t, writerSchema, "out"))
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, pipe.Stages())
}

func TestStage(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	out := newDescriptor(t, writerSchema, "out")
	require.NoError(t, pipe.AddStage(out))

	got, err := pipe.Stage("out")
	require.NoError(t, err)
	assert.Same(t, out, got)

	_, err = pipe.Stage("nope")
	require.ErrorIs(t, err, pipeline.ErrUnknownStage)
}

func TestLoggerSeesAppendsAndIssues(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	pipe, err := pipeline.New(pipeline.WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.NoError(t, pipe.AddStage(newDescriptor(t, filterSchema, "StableParticles")))
	require.NoError(t, pipe.Finalize())

	assert.Equal(t, 1, logs.FilterMessage("stage added").Len())
	assert.Equal(t, 1, logs.FilterMessage("data-flow issue").Len())
	assert.Equal(t, 1, logs.FilterMessage("pipeline finalized").Len())
}
