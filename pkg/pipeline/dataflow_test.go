package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/pipeline"
)

func buildChain(t *testing.T, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()

	pipe, err := pipeline.New(opts...)
	require.NoError(t, err)

	gen := newDescriptor(t, generatorSchema, "Pythia8")
	conv := newDescriptor(t, converterSchema, "")
	filter := newDescriptor(t, filterSchema, "StableParticles")
	require.NoError(t, pipeline.Link("GenParticlesStable", filter, newDescriptor(t, filterSchema, "unused")))

	require.NoError(t, pipe.AddStage(gen))
	require.NoError(t, pipe.AddStage(conv))
	require.NoError(t, pipe.AddStage(filter))
	require.NoError(t, pipe.AddStage(newDescriptor(t, writerSchema, "out")))

	return pipe
}

func TestValidateCleanChain(t *testing.T) {
	t.Parallel()

	pipe := buildChain(t)
	issues, err := pipe.Validate()
	require.NoError(t, err)
	assert.Empty(t, issues)

	flow, _, err := pipe.DataFlow()
	require.NoError(t, err)

	edge, err := flow.Edge("Pythia8", "HepMCToEDMConverter")
	require.NoError(t, err)
	assert.Equal(t, "hepmc", edge.Properties.Attributes["label"])

	edge, err = flow.Edge("HepMCToEDMConverter", "StableParticles")
	require.NoError(t, err)
	assert.Equal(t, "GenParticles", edge.Properties.Attributes["label"])

	size, err := flow.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestValidateDanglingPath(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	filter := newDescriptor(t, filterSchema, "StableParticles")
	require.NoError(t, filter.SetPath("GenParticles", "nobody"))
	require.NoError(t, pipe.AddStage(filter))

	issues, err := pipe.Validate()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, pipeline.DanglingPath, issues[0].Code)
	assert.Equal(t, "StableParticles", issues[0].Descriptor)
	assert.Equal(t, "nobody", issues[0].Subject)

	// not strict: the issue is reported but the pipeline still finalizes
	require.NoError(t, pipe.Finalize())
}

func TestValidateReadBeforeWrite(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(pipeline.WithStrictDataFlow())
	require.NoError(t, err)

	require.NoError(t, pipe.AddStage(newDescriptor(t, converterSchema, "")))
	require.NoError(t, pipe.AddStage(newDescriptor(t, generatorSchema, "Pythia8")))

	issues, err := pipe.Validate()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, pipeline.ReadBeforeWrite, issues[0].Code)

	err = pipe.Finalize()
	var verr *pipeline.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, issues, verr.Issues)
	assert.False(t, pipe.Finalized())
}

func TestValidateDuplicateWriter(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	require.NoError(t, pipe.AddStage(newDescriptor(t, generatorSchema, "Signal")))
	require.NoError(t, pipe.AddStage(newDescriptor(t, generatorSchema, "PileUp")))

	issues, err := pipe.Validate()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, pipeline.DuplicateWriter, issues[0].Code)
	assert.Equal(t, "PileUp", issues[0].Descriptor)
}

func TestValidateServiceOrder(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipe.AddService(newDescriptor(t, simSvcSchema, "")))
	require.NoError(t, pipe.AddService(newDescriptor(t, geoSvcSchema, "")))

	issues, err := pipe.Validate()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, pipeline.ServiceOrder, issues[0].Code)
	assert.Equal(t, "GeoSvc", issues[0].Subject)

	ordered, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, ordered.AddService(newDescriptor(t, geoSvcSchema, "")))
	require.NoError(t, ordered.AddService(newDescriptor(t, simSvcSchema, "")))

	issues, err = ordered.Validate()
	require.NoError(t, err)
	assert.Empty(t, issues)

	missing, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, missing.AddService(newDescriptor(t, simSvcSchema, "")))

	issues, err = missing.Validate()
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, pipeline.MissingService, issues[0].Code)
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	pipe := buildChain(t)

	deps, err := pipe.Dependencies("StableParticles")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pythia8", "HepMCToEDMConverter"}, deps)

	deps, err = pipe.Dependencies("out")
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = pipe.Dependencies("nope")
	require.ErrorIs(t, err, pipeline.ErrUnknownStage)
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := &pipeline.ValidationError{Issues: []pipeline.Issue{{
		Code:       pipeline.DanglingPath,
		Descriptor: "StableParticles",
		Subject:    "nobody",
		Detail:     "no stage writes this path",
	}}}
	assert.Equal(t,
		`pipeline has 1 data-flow issue(s): dangling-path: StableParticles "nobody": no stage writes this path`,
		err.Error(),
	)
}
