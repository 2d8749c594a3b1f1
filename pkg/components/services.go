package components

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

// EventDataSvc is the instance name every event store consumer expects.
const EventDataSvc = "EventDataSvc"

func init() {
	register(func() Component { return K4DataSvc() })
	register(func() Component { return FCCDataSvc() })
	register(func() Component { return &GeoSvc{} })
	register(func() Component { return &SimG4Svc{} })
	register(func() Component { return &THistSvc{} })
}

func dataSvcSchema(componentType string) pipeline.Schema {
	return withCommon(pipeline.Schema{
		Type: componentType,
		Kind: model.ServiceKind,
		Doc:  "podio-backed transient event store",
		Properties: []pipeline.PropertySpec{
			{Name: "input", Type: model.StringType, Default: "", Doc: "podio file to read events from"},
		},
	})
}

var (
	k4DataSvcSchema  = dataSvcSchema("k4DataSvc")
	fccDataSvcSchema = dataSvcSchema("FCCDataSvc")
)

// DataSvc is the event data service. Its name defaults to EventDataSvc rather than the type.
type DataSvc struct {
	Common `yaml:",inline"`
	Input  string `yaml:"input,omitempty"`

	schema pipeline.Schema
}

// K4DataSvc returns the key4hep flavour of the data service.
func K4DataSvc() *DataSvc { return &DataSvc{schema: k4DataSvcSchema} }

// FCCDataSvc returns the legacy FCC flavour of the data service.
func FCCDataSvc() *DataSvc { return &DataSvc{schema: fccDataSvcSchema} }

func (c *DataSvc) Schema() pipeline.Schema {
	if c.schema.Type == "" {
		return k4DataSvcSchema
	}

	return c.schema
}

func (c *DataSvc) Build(name string) (*pipeline.Descriptor, error) {
	if name == "" {
		name = EventDataSvc
	}

	p := &props{}
	c.Common.apply(p)
	p.str("input", c.Input)

	return build(c, name, p)
}

var geoSvcSchema = withCommon(pipeline.Schema{
	Type: "GeoSvc",
	Kind: model.ServiceKind,
	Doc:  "DD4hep detector geometry",
	Properties: []pipeline.PropertySpec{
		{Name: "detectors", Type: model.StringListType, Default: []string{}, Doc: "compact XML files"},
	},
})

// GeoSvc loads the detector description.
type GeoSvc struct {
	Common    `yaml:",inline"`
	Detectors []string `yaml:"detectors,omitempty"`
}

func (c *GeoSvc) Schema() pipeline.Schema { return geoSvcSchema }

func (c *GeoSvc) Build(name string) (*pipeline.Descriptor, error) {
	if c.Detectors != nil && len(c.Detectors) == 0 {
		return nil, errors.Wrap(ErrInvalidValue, "detectors must not be empty")
	}

	p := &props{}
	c.Common.apply(p)
	p.strs("detectors", c.Detectors)

	return build(c, name, p)
}

var simG4SvcSchema = withCommon(pipeline.Schema{
	Type: "SimG4Svc",
	Kind: model.ServiceKind,
	Doc:  "Geant4 full simulation, built on the geometry service",
	Properties: []pipeline.PropertySpec{
		{Name: "detector", Type: model.StringType, Default: "SimG4DD4hepDetector"},
		{Name: "physicslist", Type: model.StringType, Default: "SimG4FtfpBert"},
		{Name: "actions", Type: model.StringType, Default: "SimG4FullSimActions"},
		{Name: "magneticField", Type: model.StringType, Default: "SimG4ConstantMagneticFieldTool"},
		{Name: "regions", Type: model.StringListType, Default: []string{}},
	},
	Requires: []string{"GeoSvc"},
})

// SimG4Svc configures Geant4. Its tools are referenced by name.
type SimG4Svc struct {
	Common        `yaml:",inline"`
	Detector      string   `yaml:"detector,omitempty"`
	PhysicsList   string   `yaml:"physicslist,omitempty"`
	Actions       string   `yaml:"actions,omitempty"`
	MagneticField string   `yaml:"magneticField,omitempty"`
	Regions       []string `yaml:"regions,omitempty"`
}

func (c *SimG4Svc) Schema() pipeline.Schema { return simG4SvcSchema }

func (c *SimG4Svc) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.str("detector", c.Detector)
	p.str("physicslist", c.PhysicsList)
	p.str("actions", c.Actions)
	p.str("magneticField", c.MagneticField)
	p.strs("regions", c.Regions)

	return build(c, name, p)
}

var tHistSvcSchema = withCommon(pipeline.Schema{
	Type: "THistSvc",
	Kind: model.ServiceKind,
	Doc:  "ROOT histogram persistency",
	Properties: []pipeline.PropertySpec{
		{Name: "Output", Type: model.StringListType, Default: []string{}, Doc: "stream definitions"},
		{Name: "PrintAll", Type: model.BoolType, Default: false},
		{Name: "AutoSave", Type: model.IntType, Default: 0, Doc: "events between saves; True in option scripts reads as 1"},
		{Name: "AutoFlush", Type: model.IntType, Default: 0, Doc: "events between flushes; True in option scripts reads as 1"},
	},
})

// THistSvc writes booked histograms to ROOT files.
type THistSvc struct {
	Common    `yaml:",inline"`
	Output    []string `yaml:"Output,omitempty"`
	PrintAll  bool     `yaml:"PrintAll,omitempty"`
	AutoSave  int      `yaml:"AutoSave,omitempty"`
	AutoFlush int      `yaml:"AutoFlush,omitempty"`
}

func (c *THistSvc) Schema() pipeline.Schema { return tHistSvcSchema }

func (c *THistSvc) Build(name string) (*pipeline.Descriptor, error) {
	p := &props{}
	c.Common.apply(p)
	p.strs("Output", c.Output)
	p.flag("PrintAll", c.PrintAll)
	p.integer("AutoSave", c.AutoSave)
	p.integer("AutoFlush", c.AutoFlush)

	return build(c, name, p)
}
