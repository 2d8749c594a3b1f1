package components

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

func init() {
	register(func() Component { return &MDIReader{} })
	register(func() Component { return &HepEVTReader{} })
	register(func() Component { return &HepMCFileWriter{} })
	register(func() Component { return &HepMCDumper{} })
	register(func() Component { return &HepMCHistograms{} })
	register(func() Component { return &PodioOutput{} })
}

// MDI input formats understood by MDIReader.
const (
	MDIGuineaPig = "guineapig"
	MDIXtrack    = "xtrack"
	MDIPhotons   = "photons"
	MDIGeneral   = "general"
)

var mdiInputTypes = []string{MDIGuineaPig, MDIXtrack, MDIPhotons, MDIGeneral}

var mdiReaderSchema = withCommon(pipeline.Schema{
	Type: "MDIReader",
	Kind: model.ReaderKind,
	Doc:  "reads machine-detector-interface particles into the event store",
	Properties: []pipeline.PropertySpec{
		{Name: "MDIFilename", Type: model.StringType, Default: "", Doc: "file to read"},
		{Name: "CrossingAngle", Type: model.FloatType, Default: 0.0, Doc: "half crossing angle [rad]"},
		{Name: "LongitudinalCut", Type: model.FloatType, Default: 0.0, Doc: "cut_z used by GuineaPig [um]"},
		{Name: "InputType", Type: model.StringType, Default: "", Doc: "guineapig, xtrack, photons or general"},
		{Name: "BeamEnergy", Type: model.FloatType, Default: 0.0, Doc: "beam energy [GeV], needed by xtrack"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "GenParticles", Direction: model.Writer, Default: "GenParticles"},
	},
	Requires: []string{"EventDataSvc"},
})

// MDIReader reads beam-induced background particles.
type MDIReader struct {
	Common          `yaml:",inline"`
	MDIFilename     string  `yaml:"MDIFilename,omitempty"`
	CrossingAngle   float64 `yaml:"CrossingAngle,omitempty"`
	LongitudinalCut float64 `yaml:"LongitudinalCut,omitempty"`
	InputType       string  `yaml:"InputType,omitempty"`
	BeamEnergy      float64 `yaml:"BeamEnergy,omitempty"`
}

func (c *MDIReader) Schema() pipeline.Schema { return mdiReaderSchema }

func (c *MDIReader) Build(name string) (*pipeline.Descriptor, error) {
	if c.InputType != "" && !contains(mdiInputTypes, c.InputType) {
		return nil, errors.Wrapf(ErrInvalidValue, "InputType %q, want one of %v", c.InputType, mdiInputTypes)
	}

	if c.InputType == MDIXtrack && c.BeamEnergy <= 0 {
		return nil, errors.Wrap(ErrInvalidValue, "xtrack input needs a positive BeamEnergy")
	}

	p := &props{}
	c.Common.apply(p)
	p.str("MDIFilename", c.MDIFilename)
	p.float("CrossingAngle", c.CrossingAngle)
	p.float("LongitudinalCut", c.LongitudinalCut)
	p.str("InputType", c.InputType)
	p.float("BeamEnergy", c.BeamEnergy)

	return build(c, name, p)
}

var hepEVTReaderSchema = withCommon(pipeline.Schema{
	Type: "HepEVTReader",
	Kind: model.ReaderKind,
	Doc:  "reads HepEVT ascii events into the event store",
	Properties: []pipeline.PropertySpec{
		{Name: "HepEVTFilename", Type: model.StringType, Default: ""},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "GenParticles", Direction: model.Writer, Default: "GenParticles"},
	},
	Requires: []string{"EventDataSvc"},
})

// HepEVTReader reads particles from a HepEVT file.
type HepEVTReader struct {
	Common         `yaml:",inline"`
	HepEVTFilename string `yaml:"HepEVTFilename,omitempty"`
}

func (c *HepEVTReader) Schema() pipeline.Schema { return hepEVTReaderSchema }

func (c *HepEVTReader) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.str("HepEVTFilename", c.HepEVTFilename)

	return build(c, name, p)
}

var hepmcFileWriterSchema = withCommon(pipeline.Schema{
	Type: "HepMCFileWriter",
	Kind: model.WriterKind,
	Doc:  "writes the HepMC event to a text file",
	Properties: []pipeline.PropertySpec{
		{Name: "Filename", Type: model.StringType, Default: "Output_HepMC.dat"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "hepmc", Direction: model.Reader, Default: "HepMC"},
	},
})

// HepMCFileWriter dumps HepMC events to an ascii file.
type HepMCFileWriter struct {
	Common   `yaml:",inline"`
	Filename string `yaml:"Filename,omitempty"`
}

func (c *HepMCFileWriter) Schema() pipeline.Schema { return hepmcFileWriterSchema }

func (c *HepMCFileWriter) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.str("Filename", c.Filename)

	return build(c, name, p)
}

var hepmcDumperSchema = withCommon(pipeline.Schema{
	Type: "HepMCDumper",
	Kind: model.MonitorKind,
	Doc:  "prints the HepMC event",
	Handles: []pipeline.HandleSpec{
		{Name: "hepmc", Direction: model.Reader, Default: "hepmc"},
	},
})

// HepMCDumper prints every HepMC event it reads.
type HepMCDumper struct {
	Common `yaml:",inline"`
}

func (c *HepMCDumper) Schema() pipeline.Schema { return hepmcDumperSchema }

func (c *HepMCDumper) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)

	return build(c, name, p)
}

var hepmcHistogramsSchema = withCommon(pipeline.Schema{
	Type: "HepMCHistograms",
	Kind: model.MonitorKind,
	Doc:  "fills generator-level histograms",
	Handles: []pipeline.HandleSpec{
		{Name: "hepmc", Direction: model.Reader, Default: "HepMC"},
	},
	Requires: []string{"THistSvc"},
})

// HepMCHistograms books histograms of the HepMC event through THistSvc.
type HepMCHistograms struct {
	Common `yaml:",inline"`
}

func (c *HepMCHistograms) Schema() pipeline.Schema { return hepmcHistogramsSchema }

func (c *HepMCHistograms) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)

	return build(c, name, p)
}

var podioOutputSchema = withCommon(pipeline.Schema{
	Type: "PodioOutput",
	Kind: model.WriterKind,
	Doc:  "persists event store collections to a podio file",
	Properties: []pipeline.PropertySpec{
		{Name: "filename", Type: model.StringType, Default: "output.root"},
		{Name: "outputCommands", Type: model.StringListType, Default: []string{"keep *"}, Doc: "keep/drop patterns"},
	},
	Requires: []string{"EventDataSvc"},
})

// PodioOutput writes the collections selected by OutputCommands.
type PodioOutput struct {
	Common         `yaml:",inline"`
	Filename       string   `yaml:"filename,omitempty"`
	OutputCommands []string `yaml:"outputCommands,omitempty"`
}

func (c *PodioOutput) Schema() pipeline.Schema { return podioOutputSchema }

func (c *PodioOutput) Build(name string) (*pipeline.Descriptor, error) {
	for _, cmd := range c.OutputCommands {
		if !validOutputCommand(cmd) {
			return nil, errors.Wrapf(ErrInvalidValue, "output command %q", cmd)
		}
	}

	p := &props{}
	c.Common.apply(p)
	p.str("filename", c.Filename)
	p.strs("outputCommands", c.OutputCommands)

	return build(c, name, p)
}

// validOutputCommand accepts "keep <pattern>" and "drop <pattern>".
func validOutputCommand(cmd string) bool {
	for _, verb := range []string{"keep ", "drop "} {
		if len(cmd) > len(verb) && cmd[:len(verb)] == verb {
			return true
		}
	}

	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
