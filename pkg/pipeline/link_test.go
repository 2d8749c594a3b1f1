package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/pipeline"
)

func TestLink(t *testing.T) {
	t.Parallel()

	conv := newDescriptor(t, converterSchema, "")
	filter := newDescriptor(t, filterSchema, "StableParticles")

	require.NoError(t, pipeline.Link("AllGen", conv, filter))

	out, err := conv.Path("GenParticles")
	require.NoError(t, err)
	in, err := filter.Path("GenParticles")
	require.NoError(t, err)

	assert.Equal(t, "AllGen", out)
	assert.Equal(t, out, in)

	// untouched handles keep their defaults
	other, err := conv.Path("hepmc")
	require.NoError(t, err)
	assert.Equal(t, "hepmc", other)
}

func TestLinkErrors(t *testing.T) {
	t.Parallel()

	gen := newDescriptor(t, generatorSchema, "Pythia8")
	conv := newDescriptor(t, converterSchema, "")
	out := newDescriptor(t, writerSchema, "out")
	filter := newDescriptor(t, filterSchema, "")

	require.ErrorIs(t, pipeline.Link("x", nil, conv), pipeline.ErrDescriptorMustBeSet)
	require.ErrorIs(t, pipeline.Link("", gen, conv), pipeline.ErrEmptyPath)
	require.ErrorIs(t, pipeline.Link("x", out, conv), pipeline.ErrHandleNotFound)
	require.ErrorIs(t, pipeline.Link("x", gen, out), pipeline.ErrHandleNotFound)
	require.ErrorIs(t, pipeline.Link("x", gen, conv, pipeline.ToHandle("GenParticles")), pipeline.ErrHandleNotFound)
	require.NoError(t, pipeline.Link("x", gen, filter, pipeline.FromHandle("hepmc"), pipeline.ToHandle("GenParticles")))
}

func TestLinkAmbiguous(t *testing.T) {
	t.Parallel()

	twoWriters := newDescriptor(t, pipeline.Schema{
		Type: "Splitter",
		Kind: converterSchema.Kind,
		Handles: []pipeline.HandleSpec{
			{Name: "a", Direction: "writer", Default: "a"},
			{Name: "b", Direction: "writer", Default: "b"},
		},
	}, "")
	filter := newDescriptor(t, filterSchema, "")

	require.ErrorIs(t, pipeline.Link("x", twoWriters, filter), pipeline.ErrAmbiguousHandle)
	require.NoError(t, pipeline.Link("x", twoWriters, filter, pipeline.FromHandle("b")))

	path, err := twoWriters.Path("b")
	require.NoError(t, err)
	assert.Equal(t, "x", path)
}
