package components

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

func init() {
	register(func() Component { return &PythiaInterface{} })
	register(func() Component { return &GenAlg{} })
	register(func() Component { return &ConstPtParticleGun{} })
	register(func() Component { return &MomentumRangeParticleGun{} })
	register(func() Component { return &ConstPileUp{} })
	register(func() Component { return &PoissonPileUp{} })
	register(func() Component { return &RangePileUp{} })
	register(func() Component { return &HepMCSimpleMerge{} })
	register(func() Component { return &HepMCFullMerge{} })
	register(func() Component { return &HepMCFileReader{} })
}

var pythiaSchema = withCommon(pipeline.Schema{
	Type: "PythiaInterface",
	Kind: model.ToolKind,
	Doc:  "Pythia8 event provider configured by a command card",
	Properties: []pipeline.PropertySpec{
		{Name: "pythiacard", Type: model.StringType, Default: "Pythia_minbias_pp_100TeV.cmd", Doc: "Pythia command file"},
		{Name: "pythiaExtraSettings", Type: model.StringListType, Default: []string{""}, Doc: "settings applied after the card"},
		{Name: "printPythiaStatistics", Type: model.BoolType, Default: false},
		{Name: "doEvtGenDecays", Type: model.BoolType, Default: false, Doc: "decay with EvtGen"},
		{Name: "EvtGenDecayFile", Type: model.StringType, Default: "Generation/data/DECAY.DEC"},
		{Name: "UserDecayFile", Type: model.StringType, Default: ""},
		{Name: "EvtGenParticleDataFile", Type: model.StringType, Default: "Generation/data/evt.pdl"},
		{Name: "EvtGenExcludes", Type: model.IntListType, Default: []int{}, Doc: "PDG ids not decayed by EvtGen"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "mePsMatchingVars", Direction: model.Writer, Default: "mePsMatchingVars"},
	},
})

// PythiaInterface provides signal or pile-up events from Pythia8.
type PythiaInterface struct {
	Common                 `yaml:",inline"`
	PythiaCard             string   `yaml:"pythiacard,omitempty"`
	PythiaExtraSettings    []string `yaml:"pythiaExtraSettings,omitempty"`
	PrintPythiaStatistics  bool     `yaml:"printPythiaStatistics,omitempty"`
	DoEvtGenDecays         bool     `yaml:"doEvtGenDecays,omitempty"`
	EvtGenDecayFile        string   `yaml:"EvtGenDecayFile,omitempty"`
	UserDecayFile          string   `yaml:"UserDecayFile,omitempty"`
	EvtGenParticleDataFile string   `yaml:"EvtGenParticleDataFile,omitempty"`
	EvtGenExcludes         []int    `yaml:"EvtGenExcludes,omitempty"`
}

func (c *PythiaInterface) Schema() pipeline.Schema { return pythiaSchema }

func (c *PythiaInterface) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.str("pythiacard", c.PythiaCard)
	p.strs("pythiaExtraSettings", c.PythiaExtraSettings)
	p.flag("printPythiaStatistics", c.PrintPythiaStatistics)
	p.flag("doEvtGenDecays", c.DoEvtGenDecays)
	p.str("EvtGenDecayFile", c.EvtGenDecayFile)
	p.str("UserDecayFile", c.UserDecayFile)
	p.str("EvtGenParticleDataFile", c.EvtGenParticleDataFile)
	p.ints("EvtGenExcludes", c.EvtGenExcludes)

	if c.UserDecayFile != "" && !c.DoEvtGenDecays {
		return nil, errors.Wrap(ErrInvalidValue, "UserDecayFile requires doEvtGenDecays")
	}

	return build(c, name, p)
}

var genAlgSchema = withCommon(pipeline.Schema{
	Type: "GenAlg",
	Kind: model.GeneratorKind,
	Doc:  "produces one HepMC event from a signal provider, optional pile-up, merged and vertex-smeared",
	Properties: []pipeline.PropertySpec{
		{Name: "SignalProvider", Type: model.ToolType},
		{Name: "PileUpProvider", Type: model.ToolType},
		{Name: "PileUpTool", Type: model.ToolType},
		{Name: "HepMCMergeTool", Type: model.ToolType},
		{Name: "VertexSmearingTool", Type: model.ToolType},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "hepmc", Direction: model.Writer, Default: "hepmc"},
	},
})

// GenAlg is the generator algorithm. Its tools are descriptors built from other components.
type GenAlg struct {
	Common             `yaml:",inline"`
	SignalProvider     *pipeline.Descriptor `yaml:"-"`
	PileUpProvider     *pipeline.Descriptor `yaml:"-"`
	PileUpTool         *pipeline.Descriptor `yaml:"-"`
	HepMCMergeTool     *pipeline.Descriptor `yaml:"-"`
	VertexSmearingTool *pipeline.Descriptor `yaml:"-"`
}

func (c *GenAlg) Schema() pipeline.Schema { return genAlgSchema }

func (c *GenAlg) SetTool(property string, tool *pipeline.Descriptor) error {
	switch property {
	case "SignalProvider":
		c.SignalProvider = tool
	case "PileUpProvider":
		c.PileUpProvider = tool
	case "PileUpTool":
		c.PileUpTool = tool
	case "HepMCMergeTool":
		c.HepMCMergeTool = tool
	case "VertexSmearingTool":
		c.VertexSmearingTool = tool
	default:
		return errors.Wrapf(pipeline.ErrUnknownProperty, "GenAlg has no tool %q", property)
	}

	return nil
}

var _ ToolSetter = (*GenAlg)(nil)

func (c *GenAlg) Build(name string) (*pipeline.Descriptor, error) {
	if (c.PileUpProvider == nil) != (c.PileUpTool == nil) {
		return nil, errors.Wrap(ErrInvalidValue, "PileUpProvider and PileUpTool go together")
	}

	p := &props{}
	c.Common.apply(p)
	p.tool("SignalProvider", c.SignalProvider)
	p.tool("PileUpProvider", c.PileUpProvider)
	p.tool("PileUpTool", c.PileUpTool)
	p.tool("HepMCMergeTool", c.HepMCMergeTool)
	p.tool("VertexSmearingTool", c.VertexSmearingTool)

	return build(c, name, p)
}

var constPtGunSchema = withCommon(pipeline.Schema{
	Type: "ConstPtParticleGun",
	Kind: model.ToolKind,
	Doc:  "particle gun with transverse momentum and pseudorapidity ranges or lists",
	Properties: []pipeline.PropertySpec{
		{Name: "PdgCodes", Type: model.IntListType, Default: []int{-211}},
		{Name: "PtMin", Type: model.EnergyType, Default: units.New(1, units.GeV)},
		{Name: "PtMax", Type: model.EnergyType, Default: units.New(1, units.GeV)},
		{Name: "EtaMin", Type: model.FloatType, Default: -5.0},
		{Name: "EtaMax", Type: model.FloatType, Default: 5.0},
		{Name: "PhiMin", Type: model.AngleType, Default: units.New(0, units.Radian)},
		{Name: "PhiMax", Type: model.AngleType, Default: units.New(6.283185307179586, units.Radian)},
		{Name: "PtList", Type: model.StringListType, Default: []string{}, Doc: "explicit pt values, overriding the range"},
		{Name: "EtaList", Type: model.StringListType, Default: []string{}},
		{Name: "logSpacedPt", Type: model.BoolType, Default: false},
		{Name: "writeParticleGunBranches", Type: model.BoolType, Default: true},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "ParticleGun_Pt", Direction: model.Writer, Default: "ParticleGun_Pt"},
		{Name: "ParticleGun_Eta", Direction: model.Writer, Default: "ParticleGun_Eta"},
	},
})

// ConstPtParticleGun shoots particles at a fixed or ranged transverse momentum.
type ConstPtParticleGun struct {
	Common                   `yaml:",inline"`
	PdgCodes                 []int          `yaml:"PdgCodes,omitempty"`
	PtMin                    units.Quantity `yaml:"PtMin,omitempty"`
	PtMax                    units.Quantity `yaml:"PtMax,omitempty"`
	EtaMin                   *float64       `yaml:"EtaMin,omitempty"`
	EtaMax                   *float64       `yaml:"EtaMax,omitempty"`
	PhiMin                   units.Quantity `yaml:"PhiMin,omitempty"`
	PhiMax                   units.Quantity `yaml:"PhiMax,omitempty"`
	PtList                   []string       `yaml:"PtList,omitempty"`
	EtaList                  []string       `yaml:"EtaList,omitempty"`
	LogSpacedPt              bool           `yaml:"logSpacedPt,omitempty"`
	WriteParticleGunBranches *bool          `yaml:"writeParticleGunBranches,omitempty"`
}

func (c *ConstPtParticleGun) Schema() pipeline.Schema { return constPtGunSchema }

func (c *ConstPtParticleGun) Build(name string) (*pipeline.Descriptor, error) {
	if err := checkRange("Pt", c.PtMin, c.PtMax); err != nil {
		return nil, err
	}

	etaMin, etaMax := defaultFloat(constPtGunSchema, "EtaMin", c.EtaMin), defaultFloat(constPtGunSchema, "EtaMax", c.EtaMax)
	if etaMin > etaMax {
		return nil, errors.Wrapf(ErrInvalidValue, "EtaMin %g > EtaMax %g", etaMin, etaMax)
	}

	p := &props{}
	c.Common.apply(p)
	p.ints("PdgCodes", c.PdgCodes)
	p.quantity("PtMin", c.PtMin)
	p.quantity("PtMax", c.PtMax)
	p.optFloat("EtaMin", c.EtaMin)
	p.optFloat("EtaMax", c.EtaMax)
	p.quantity("PhiMin", c.PhiMin)
	p.quantity("PhiMax", c.PhiMax)
	p.strs("PtList", c.PtList)
	p.strs("EtaList", c.EtaList)
	p.flag("logSpacedPt", c.LogSpacedPt)
	p.optFlag("writeParticleGunBranches", c.WriteParticleGunBranches)

	return build(c, name, p)
}

var momentumGunSchema = withCommon(pipeline.Schema{
	Type: "MomentumRangeParticleGun",
	Kind: model.ToolKind,
	Doc:  "particle gun flat in momentum, theta and phi",
	Properties: []pipeline.PropertySpec{
		{Name: "PdgCodes", Type: model.IntListType, Default: []int{-211}},
		{Name: "MomentumMin", Type: model.EnergyType, Default: units.New(100, units.GeV)},
		{Name: "MomentumMax", Type: model.EnergyType, Default: units.New(100, units.GeV)},
		{Name: "ThetaMin", Type: model.AngleType, Default: units.New(0.1, units.Radian)},
		{Name: "ThetaMax", Type: model.AngleType, Default: units.New(0.4, units.Radian)},
		{Name: "PhiMin", Type: model.AngleType, Default: units.New(0, units.Radian)},
		{Name: "PhiMax", Type: model.AngleType, Default: units.New(6.283185307179586, units.Radian)},
	},
})

// MomentumRangeParticleGun shoots particles flat in momentum and direction.
type MomentumRangeParticleGun struct {
	Common      `yaml:",inline"`
	PdgCodes    []int          `yaml:"PdgCodes,omitempty"`
	MomentumMin units.Quantity `yaml:"MomentumMin,omitempty"`
	MomentumMax units.Quantity `yaml:"MomentumMax,omitempty"`
	ThetaMin    units.Quantity `yaml:"ThetaMin,omitempty"`
	ThetaMax    units.Quantity `yaml:"ThetaMax,omitempty"`
	PhiMin      units.Quantity `yaml:"PhiMin,omitempty"`
	PhiMax      units.Quantity `yaml:"PhiMax,omitempty"`
}

func (c *MomentumRangeParticleGun) Schema() pipeline.Schema { return momentumGunSchema }

func (c *MomentumRangeParticleGun) Build(name string) (*pipeline.Descriptor, error) {
	for _, r := range []struct {
		name     string
		min, max units.Quantity
	}{
		{"Momentum", c.MomentumMin, c.MomentumMax},
		{"Theta", c.ThetaMin, c.ThetaMax},
		{"Phi", c.PhiMin, c.PhiMax},
	} {
		if err := checkRange(r.name, r.min, r.max); err != nil {
			return nil, err
		}
	}

	p := &props{}
	c.Common.apply(p)
	p.ints("PdgCodes", c.PdgCodes)
	p.quantity("MomentumMin", c.MomentumMin)
	p.quantity("MomentumMax", c.MomentumMax)
	p.quantity("ThetaMin", c.ThetaMin)
	p.quantity("ThetaMax", c.ThetaMax)
	p.quantity("PhiMin", c.PhiMin)
	p.quantity("PhiMax", c.PhiMax)

	return build(c, name, p)
}

var constPileUpSchema = withCommon(pipeline.Schema{
	Type:       "ConstPileUp",
	Kind:       model.ToolKind,
	Doc:        "fixed number of pile-up events",
	Properties: []pipeline.PropertySpec{{Name: "numPileUpEvents", Type: model.IntType, Default: 0}},
})

// ConstPileUp adds the same number of pile-up events to every event.
type ConstPileUp struct {
	Common          `yaml:",inline"`
	NumPileUpEvents int `yaml:"numPileUpEvents,omitempty"`
}

func (c *ConstPileUp) Schema() pipeline.Schema { return constPileUpSchema }

func (c *ConstPileUp) Build(name string) (*pipeline.Descriptor, error) {
	if c.NumPileUpEvents < 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "numPileUpEvents %d", c.NumPileUpEvents)
	}

	p := &props{}
	c.Common.apply(p)
	p.integer("numPileUpEvents", c.NumPileUpEvents)

	return build(c, name, p)
}

var poissonPileUpSchema = withCommon(pipeline.Schema{
	Type:       "PoissonPileUp",
	Kind:       model.ToolKind,
	Doc:        "Poisson-distributed number of pile-up events",
	Properties: []pipeline.PropertySpec{{Name: "numPileUpEvents", Type: model.FloatType, Default: 0.0}},
})

// PoissonPileUp draws the number of pile-up events from a Poisson distribution.
type PoissonPileUp struct {
	Common          `yaml:",inline"`
	NumPileUpEvents float64 `yaml:"numPileUpEvents,omitempty"`
}

func (c *PoissonPileUp) Schema() pipeline.Schema { return poissonPileUpSchema }

func (c *PoissonPileUp) Build(name string) (*pipeline.Descriptor, error) {
	if c.NumPileUpEvents < 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "numPileUpEvents %g", c.NumPileUpEvents)
	}

	p := &props{}
	c.Common.apply(p)
	p.float("numPileUpEvents", c.NumPileUpEvents)

	return build(c, name, p)
}

var rangePileUpSchema = withCommon(pipeline.Schema{
	Type:       "RangePileUp",
	Kind:       model.ToolKind,
	Doc:        "cycles through a list of pile-up multiplicities",
	Properties: []pipeline.PropertySpec{{Name: "numPileUpEvents", Type: model.IntListType, Default: []int{0}}},
})

// RangePileUp cycles through the listed numbers of pile-up events.
type RangePileUp struct {
	Common          `yaml:",inline"`
	NumPileUpEvents []int `yaml:"numPileUpEvents,omitempty"`
}

func (c *RangePileUp) Schema() pipeline.Schema { return rangePileUpSchema }

func (c *RangePileUp) Build(name string) (*pipeline.Descriptor, error) {
	if c.NumPileUpEvents != nil && len(c.NumPileUpEvents) == 0 {
		return nil, errors.Wrap(ErrInvalidValue, "numPileUpEvents must not be empty")
	}

	p := &props{}
	c.Common.apply(p)
	p.ints("numPileUpEvents", c.NumPileUpEvents)

	return build(c, name, p)
}

var simpleMergeSchema = withCommon(pipeline.Schema{Type: "HepMCSimpleMerge", Kind: model.ToolKind, Doc: "appends pile-up vertices to the signal event"})

// HepMCSimpleMerge merges pile-up into the signal event keeping vertices separate.
type HepMCSimpleMerge struct {
	Common `yaml:",inline"`
}

func (c *HepMCSimpleMerge) Schema() pipeline.Schema { return simpleMergeSchema }

func (c *HepMCSimpleMerge) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)

	return build(c, name, p)
}

var fullMergeSchema = withCommon(pipeline.Schema{Type: "HepMCFullMerge", Kind: model.ToolKind, Doc: "merges pile-up keeping the full event record"})

// HepMCFullMerge merges pile-up keeping the whole event record of each pile-up event.
type HepMCFullMerge struct {
	Common `yaml:",inline"`
}

func (c *HepMCFullMerge) Schema() pipeline.Schema { return fullMergeSchema }

func (c *HepMCFullMerge) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)

	return build(c, name, p)
}

var hepmcFileReaderSchema = withCommon(pipeline.Schema{
	Type:       "HepMCFileReader",
	Kind:       model.ToolKind,
	Doc:        "event provider reading a HepMC3 ascii file",
	Properties: []pipeline.PropertySpec{{Name: "Filename", Type: model.StringType, Default: ""}},
})

// HepMCFileReader provides events read from a HepMC file.
type HepMCFileReader struct {
	Common   `yaml:",inline"`
	Filename string `yaml:"Filename,omitempty"`
}

func (c *HepMCFileReader) Schema() pipeline.Schema { return hepmcFileReaderSchema }

func (c *HepMCFileReader) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.str("Filename", c.Filename)

	return build(c, name, p)
}

func checkRange(name string, lo, hi units.Quantity) error {
	if lo.IsZero() || hi.IsZero() {
		return nil
	}

	if lo.Dimension() != hi.Dimension() {
		return errors.Wrapf(units.ErrDimensionMismatch, "%sMin and %sMax", name, name)
	}

	if lo.Canonical() > hi.Canonical() {
		return errors.Wrapf(ErrInvalidValue, "%sMin %s > %sMax %s", name, lo, name, hi)
	}

	return nil
}

// defaultFloat returns *v, or the schema default of the property when v is unset.
func defaultFloat(schema pipeline.Schema, name string, v *float64) float64 {
	if v != nil {
		return *v
	}

	spec, _ := schema.Property(name)
	def, _ := spec.Default.(float64)

	return def
}
