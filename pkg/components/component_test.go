package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	types := components.Types()
	assert.IsNonDecreasing(t, types)

	for _, want := range []string{
		"PythiaInterface", "GenAlg", "GaussSmearVertex", "FlatSmearVertex", "HepMCToEDMConverter",
		"GenParticleFilter", "GenEventFilter", "MDIReader", "HepMCFileReader", "HepMCFileWriter",
		"HepMCDumper", "HepMCHistograms", "ConstPtParticleGun", "MomentumRangeParticleGun",
		"ConstPileUp", "PoissonPileUp", "RangePileUp", "HepMCSimpleMerge", "PodioOutput",
		"k4DataSvc", "FCCDataSvc", "GeoSvc", "SimG4Svc", "THistSvc",
	} {
		assert.Contains(t, types, want)
	}

	for _, schema := range components.Schemas() {
		f, err := components.Lookup(schema.Type)
		require.NoError(t, err)
		assert.Equal(t, schema.Type, f().Schema().Type)

		spec, ok := schema.Property("OutputLevel")
		assert.True(t, ok, schema.Type)
		assert.Equal(t, model.LevelType, spec.Type)

		// every zero-valued component must build with defaults only
		desc, err := f().Build("")
		require.NoError(t, err, schema.Type)
		assert.Empty(t, desc.Properties(), schema.Type)
	}

	_, err := components.Lookup("Pythia9")
	assert.ErrorIs(t, err, components.ErrUnknownType)
}

func TestBuildKeepsOnlyExplicitProperties(t *testing.T) {
	t.Parallel()

	conv := &components.HepMCToEDMConverter{HepMCStatusList: []int{}}
	desc, err := conv.Build("Converter")
	require.NoError(t, err)
	assert.Equal(t, "Converter", desc.Name())
	assert.Equal(t, model.ConverterKind, desc.Kind())
	assert.Equal(t, []pipeline.Property{pipeline.P("hepmcStatusList", []int{})}, desc.Properties())

	filter := &components.GenParticleFilter{Common: components.Common{OutputLevel: model.Debug}, Accept: []int{1}}
	desc, err = filter.Build("StableParticles")
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Property{
		pipeline.P("OutputLevel", model.Debug),
		pipeline.P("accept", []int{1}),
	}, desc.Properties())

	path, err := desc.Path("GenParticlesFiltered")
	require.NoError(t, err)
	assert.Equal(t, "GenParticlesFiltered", path)
}

func TestBuildRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	minusTwo := -2

	tests := []struct {
		name string
		c    components.Component
	}{
		{"beam direction", &components.FlatSmearVertex{BeamDirection: &minusTwo}},
		{"inverted box", &components.FlatSmearVertex{
			ZVertexMin: units.MustParse("30 mm"),
			ZVertexMax: units.MustParse("-30 mm"),
		}},
		{"mdi input type", &components.MDIReader{InputType: "lhe"}},
		{"xtrack without energy", &components.MDIReader{InputType: components.MDIXtrack}},
		{"both filter rules", &components.GenEventFilter{FilterRule: "bool filterRule(){return true;}", FilterRulePath: "rule.hxx"}},
		{"empty accept", &components.GenParticleFilter{Accept: []int{}}},
		{"output command", &components.PodioOutput{OutputCommands: []string{"keep"}}},
		{"negative pile-up", &components.ConstPileUp{NumPileUpEvents: -1}},
		{"user decay without evtgen", &components.PythiaInterface{UserDecayFile: "user.dec"}},
		{"pile-up without tool", &components.GenAlg{PileUpProvider: mustBuild(t, &components.PythiaInterface{}, "PileUp")}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.c.Build("")
			assert.ErrorIs(t, err, components.ErrInvalidValue)
		})
	}

	_, err := (&components.ConstPtParticleGun{
		PtMin: units.MustParse("1 GeV"),
		PtMax: units.MustParse("1 mm"),
	}).Build("")
	assert.ErrorIs(t, err, units.ErrDimensionMismatch)

	_, err = (&components.GaussSmearVertex{XVertexSigma: units.MustParse("1 GeV")}).Build("")
	assert.ErrorIs(t, err, pipeline.ErrPropertyType)
}

func TestParticleGunEtaLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		min, max       *float64
		wantMin        float64
		wantMax        float64
		wantProperties []pipeline.Property
	}{
		{"explicit zero", components.Float(0), components.Float(2), 0, 2,
			[]pipeline.Property{pipeline.P("EtaMin", 0.0), pipeline.P("EtaMax", 2.0)}},
		{"min only", components.Float(1), nil, 1, 5, []pipeline.Property{pipeline.P("EtaMin", 1.0)}},
		{"max only", nil, components.Float(-1), -5, -1, []pipeline.Property{pipeline.P("EtaMax", -1.0)}},
		{"defaults", nil, nil, -5, 5, []pipeline.Property{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc := mustBuild(t, &components.ConstPtParticleGun{EtaMin: tt.min, EtaMax: tt.max}, "")
			assert.Equal(t, tt.wantProperties, desc.Properties())

			got, ok := desc.Get("EtaMin")
			require.True(t, ok)
			assert.Equal(t, tt.wantMin, got)

			got, ok = desc.Get("EtaMax")
			require.True(t, ok)
			assert.Equal(t, tt.wantMax, got)
		})
	}

	_, err := (&components.ConstPtParticleGun{EtaMin: components.Float(6)}).Build("")
	assert.ErrorIs(t, err, components.ErrInvalidValue)

	_, err = (&components.ConstPtParticleGun{EtaMin: components.Float(2), EtaMax: components.Float(0)}).Build("")
	assert.ErrorIs(t, err, components.ErrInvalidValue)
}

func TestGenAlgTools(t *testing.T) {
	t.Parallel()

	signal := mustBuild(t, &components.PythiaInterface{PythiaCard: "Pythia_standard.cmd"}, "Pythia8Interface")
	smear := mustBuild(t, &components.GaussSmearVertex{XVertexSigma: units.MustParse("0.5 mm")}, "")

	gen := &components.GenAlg{SignalProvider: signal, VertexSmearingTool: smear}
	desc, err := gen.Build("Pythia8")
	require.NoError(t, err)

	tools := desc.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "Pythia8Interface", tools[0].Name())
	assert.Equal(t, "GaussSmearVertex", tools[1].Name())

	_, err = (&components.GenAlg{SignalProvider: mustBuild(t, components.K4DataSvc(), "")}).Build("")
	assert.ErrorIs(t, err, pipeline.ErrWrongKind)
}

func TestDataSvcNames(t *testing.T) {
	t.Parallel()

	desc := mustBuild(t, components.FCCDataSvc(), "")
	assert.Equal(t, components.EventDataSvc, desc.Name())
	assert.Equal(t, "FCCDataSvc", desc.Type())
	assert.Equal(t, model.ServiceKind, desc.Kind())

	var zero components.DataSvc
	assert.Equal(t, "k4DataSvc", zero.Schema().Type)

	hist := mustBuild(t, &components.THistSvc{AutoSave: 1, AutoFlush: 1}, "")
	schema := hist.Schema()

	for _, name := range []string{"AutoSave", "AutoFlush"} {
		spec, ok := schema.Property(name)
		require.True(t, ok)
		assert.Equal(t, model.IntType, spec.Type)
		assert.Contains(t, spec.Doc, "True in option scripts reads as 1")

		got, _ := hist.Get(name)
		assert.Equal(t, 1, got)
	}

	sim := mustBuild(t, &components.SimG4Svc{}, "")
	assert.Equal(t, []string{"GeoSvc"}, sim.Schema().Requires)
}

func mustBuild(t *testing.T, c components.Component, name string) *pipeline.Descriptor {
	t.Helper()

	desc, err := c.Build(name)
	require.NoError(t, err)

	return desc
}
