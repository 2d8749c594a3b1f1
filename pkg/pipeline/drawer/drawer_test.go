package drawer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/drawer"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

var (
	genSchema = pipeline.Schema{
		Type:    "GenAlg",
		Kind:    model.GeneratorKind,
		Handles: []pipeline.HandleSpec{{Name: "hepmc", Direction: model.Writer, Default: "hepmc"}},
	}
	convSchema = pipeline.Schema{
		Type: "HepMCToEDMConverter",
		Kind: model.ConverterKind,
		Handles: []pipeline.HandleSpec{
			{Name: "hepmc", Direction: model.Reader, Default: "hepmc"},
			{Name: "GenParticles", Direction: model.Writer, Default: "GenParticles"},
		},
	}
	filterSchema = pipeline.Schema{
		Type: "GenParticleFilter",
		Kind: model.FilterKind,
		Handles: []pipeline.HandleSpec{
			{Name: "GenParticles", Direction: model.Reader, Default: "GenParticles"},
			{Name: "GenParticlesFiltered", Direction: model.Writer, Default: "GenParticlesFiltered"},
		},
	}
)

func TestKindColour(t *testing.T) {
	t.Parallel()

	for _, kind := range model.Kinds {
		colour, err := drawer.KindColour(kind)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(colour, "#"), colour)
	}

	_, err := drawer.KindColour("bogus")
	require.ErrorIs(t, err, model.ErrUnknownKind)
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	pipe, err := pipeline.New(pipeline.WithHook(drawer.PipelineDrawer(drawer.NewDOTDrawer(&buf))))
	require.NoError(t, err)

	gen, err := pipeline.NewDescriptor(genSchema, "Pythia8")
	require.NoError(t, err)
	conv, err := pipeline.NewDescriptor(convSchema, "")
	require.NoError(t, err)
	filter, err := pipeline.NewDescriptor(filterSchema, "StableParticles")
	require.NoError(t, err)
	orphan, err := pipeline.NewDescriptor(filterSchema, "Orphan")
	require.NoError(t, err)
	require.NoError(t, orphan.SetPath("GenParticles", "missing"))

	for _, desc := range []*pipeline.Descriptor{gen, conv, filter, orphan} {
		require.NoError(t, pipe.AddStage(desc))
	}

	assert.Empty(t, buf.String())
	require.NoError(t, pipe.Finalize())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"), out)
	assert.Contains(t, out, `rankdir="LR";`)
	assert.Contains(t, out, `"Pythia8" -> "HepMCToEDMConverter" [ label="hepmc", weight=0 ];`)
	assert.Contains(t, out, `"HepMCToEDMConverter" -> "StableParticles" [ label="GenParticles", weight=0 ];`)
	assert.Contains(t, out, `"?missing" -> "Orphan"`)
	assert.Contains(t, out, `label=<Pythia8 <BR /> <FONT POINT-SIZE="10">GenAlg</FONT>>`)

	// vertices come out in append order
	assert.Less(t, strings.Index(out, `"Pythia8" [`), strings.Index(out, `"HepMCToEDMConverter" [`))
	assert.Less(t, strings.Index(out, `"HepMCToEDMConverter" [`), strings.Index(out, `"StableParticles" [`))
}

func TestAddLinkMergesPaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	d := drawer.NewDOTDrawer(&buf)
	require.NoError(t, d.AddStep("a", "A", model.GeneratorKind))
	require.NoError(t, d.AddStep("b", "B", model.ConverterKind))
	require.NoError(t, d.AddLink("a", "b", "y"))
	require.NoError(t, d.AddLink("a", "b", "x"))
	require.NoError(t, d.Draw())

	assert.Contains(t, buf.String(), `"a" -> "b" [ label="x\ny", weight=0 ];`)
	assert.Error(t, d.AddStep("c", "C", "bogus"))
}
