package components

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

func init() {
	register(func() Component { return &HepMCToEDMConverter{} })
	register(func() Component { return &EDMToHepMCConverter{} })
	register(func() Component { return &GenParticleFilter{} })
	register(func() Component { return &GenEventFilter{} })
}

var hepmcToEDMSchema = withCommon(pipeline.Schema{
	Type: "HepMCToEDMConverter",
	Kind: model.ConverterKind,
	Doc:  "converts the HepMC event into an MCParticle collection",
	Properties: []pipeline.PropertySpec{
		{Name: "hepmcStatusList", Type: model.IntListType, Default: []int{1}, Doc: "statuses to keep, empty keeps all"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "hepmc", Direction: model.Reader, Default: "hepmc"},
		{Name: "GenParticles", Direction: model.Writer, Default: "GenParticles"},
	},
	Requires: []string{"EventDataSvc"},
})

// HepMCToEDMConverter turns HepMC particles into the event data model.
type HepMCToEDMConverter struct {
	Common `yaml:",inline"`
	// HepMCStatusList keeps particles with these statuses. Nil leaves the default, empty keeps every status.
	HepMCStatusList []int `yaml:"hepmcStatusList"`
}

func (c *HepMCToEDMConverter) Schema() pipeline.Schema { return hepmcToEDMSchema }

func (c *HepMCToEDMConverter) Build(name string) (*pipeline.Descriptor, error) {
	for _, status := range c.HepMCStatusList {
		if status < 0 {
			return nil, errors.Wrapf(ErrInvalidValue, "hepmc status %d", status)
		}
	}

	p := &props{}
	c.Common.apply(p)
	p.ints("hepmcStatusList", c.HepMCStatusList)

	return build(c, name, p)
}

var edmToHepMCSchema = withCommon(pipeline.Schema{
	Type: "EDMToHepMCConverter",
	Kind: model.ConverterKind,
	Doc:  "rebuilds a HepMC event from an MCParticle collection",
	Handles: []pipeline.HandleSpec{
		{Name: "GenParticles", Direction: model.Reader, Default: "GenParticles"},
		{Name: "hepmc", Direction: model.Writer, Default: "hepmc"},
	},
	Requires: []string{"EventDataSvc"},
})

// EDMToHepMCConverter turns event data model particles back into a HepMC event.
type EDMToHepMCConverter struct {
	Common `yaml:",inline"`
}

func (c *EDMToHepMCConverter) Schema() pipeline.Schema { return edmToHepMCSchema }

func (c *EDMToHepMCConverter) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)

	return build(c, name, p)
}

var genParticleFilterSchema = withCommon(pipeline.Schema{
	Type: "GenParticleFilter",
	Kind: model.FilterKind,
	Doc:  "copies the particles whose generator status is accepted",
	Properties: []pipeline.PropertySpec{
		{Name: "accept", Type: model.IntListType, Default: []int{1}, Doc: "accepted generator statuses"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "GenParticles", Direction: model.Reader, Default: "GenParticles"},
		{Name: "GenParticlesFiltered", Direction: model.Writer, Default: "GenParticlesFiltered"},
	},
	Requires: []string{"EventDataSvc"},
})

// GenParticleFilter keeps the particles with an accepted status.
type GenParticleFilter struct {
	Common `yaml:",inline"`
	Accept []int `yaml:"accept,omitempty"`
}

func (c *GenParticleFilter) Schema() pipeline.Schema { return genParticleFilterSchema }

func (c *GenParticleFilter) Build(name string) (*pipeline.Descriptor, error) {
	if c.Accept != nil && len(c.Accept) == 0 {
		return nil, errors.Wrap(ErrInvalidValue, "accept must list at least one status")
	}

	p := &props{}
	c.Common.apply(p)
	p.ints("accept", c.Accept)

	return build(c, name, p)
}

var genEventFilterSchema = withCommon(pipeline.Schema{
	Type: "GenEventFilter",
	Kind: model.FilterKind,
	Doc:  "skips events rejected by a compiled rule until EvtMax events are accepted",
	Properties: []pipeline.PropertySpec{
		{Name: "filterRule", Type: model.StringType, Default: "", Doc: "rule source code"},
		{Name: "filterRulePath", Type: model.StringType, Default: "", Doc: "file holding the rule"},
	},
	Handles: []pipeline.HandleSpec{
		{Name: "particles", Direction: model.Reader, Default: "particles"},
	},
	Requires: []string{"EventDataSvc"},
})

// GenEventFilter drops whole events. The rule is given inline or as a file, not both.
type GenEventFilter struct {
	Common         `yaml:",inline"`
	FilterRule     string `yaml:"filterRule,omitempty"`
	FilterRulePath string `yaml:"filterRulePath,omitempty"`
}

func (c *GenEventFilter) Schema() pipeline.Schema { return genEventFilterSchema }

func (c *GenEventFilter) Build(name string) (*pipeline.Descriptor, error) {
	if c.FilterRule != "" && c.FilterRulePath != "" {
		return nil, errors.Wrap(ErrInvalidValue, "filterRule and filterRulePath are exclusive")
	}

	p := &props{}
	c.Common.apply(p)
	p.str("filterRule", c.FilterRule)
	p.str("filterRulePath", c.FilterRulePath)

	return build(c, name, p)
}
