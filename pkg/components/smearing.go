package components

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

func init() {
	register(func() Component { return &GaussSmearVertex{} })
	register(func() Component { return &FlatSmearVertex{} })
}

var gaussSmearSchema = withCommon(pipeline.Schema{
	Type: "GaussSmearVertex",
	Kind: model.ToolKind,
	Doc:  "shifts the primary vertex by independent gaussians in x, y, z and t",
	Properties: []pipeline.PropertySpec{
		{Name: "xVertexSigma", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "yVertexSigma", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "zVertexSigma", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "tVertexSigma", Type: model.TimeType, Default: units.New(0, units.Nanosecond)},
		{Name: "xVertexMean", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "yVertexMean", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "zVertexMean", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "tVertexMean", Type: model.TimeType, Default: units.New(0, units.Nanosecond)},
	},
})

// GaussSmearVertex smears the event vertex with gaussian distributions.
type GaussSmearVertex struct {
	Common       `yaml:",inline"`
	XVertexSigma units.Quantity `yaml:"xVertexSigma,omitempty"`
	YVertexSigma units.Quantity `yaml:"yVertexSigma,omitempty"`
	ZVertexSigma units.Quantity `yaml:"zVertexSigma,omitempty"`
	TVertexSigma units.Quantity `yaml:"tVertexSigma,omitempty"`
	XVertexMean  units.Quantity `yaml:"xVertexMean,omitempty"`
	YVertexMean  units.Quantity `yaml:"yVertexMean,omitempty"`
	ZVertexMean  units.Quantity `yaml:"zVertexMean,omitempty"`
	TVertexMean  units.Quantity `yaml:"tVertexMean,omitempty"`
}

func (c *GaussSmearVertex) Schema() pipeline.Schema { return gaussSmearSchema }

func (c *GaussSmearVertex) Build(name string) (*pipeline.Descriptor, error) {
	for _, sigma := range []units.Quantity{c.XVertexSigma, c.YVertexSigma, c.ZVertexSigma, c.TVertexSigma} {
		if !sigma.IsZero() && sigma.Value < 0 {
			return nil, errors.Wrapf(ErrInvalidValue, "negative sigma %s", sigma)
		}
	}

	p := &props{}
	c.Common.apply(p)
	p.quantity("xVertexSigma", c.XVertexSigma)
	p.quantity("yVertexSigma", c.YVertexSigma)
	p.quantity("zVertexSigma", c.ZVertexSigma)
	p.quantity("tVertexSigma", c.TVertexSigma)
	p.quantity("xVertexMean", c.XVertexMean)
	p.quantity("yVertexMean", c.YVertexMean)
	p.quantity("zVertexMean", c.ZVertexMean)
	p.quantity("tVertexMean", c.TVertexMean)

	return build(c, name, p)
}

var flatSmearSchema = withCommon(pipeline.Schema{
	Type: "FlatSmearVertex",
	Kind: model.ToolKind,
	Doc:  "shifts the primary vertex uniformly inside a box",
	Properties: []pipeline.PropertySpec{
		{Name: "xVertexMin", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "xVertexMax", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "yVertexMin", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "yVertexMax", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "zVertexMin", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "zVertexMax", Type: model.LengthType, Default: units.New(0, units.Millimeter)},
		{Name: "beamDirection", Type: model.IntType, Default: 1, Doc: "-1, 0 or 1; 0 smears t symmetrically"},
	},
})

// FlatSmearVertex smears the event vertex uniformly.
type FlatSmearVertex struct {
	Common     `yaml:",inline"`
	XVertexMin units.Quantity `yaml:"xVertexMin,omitempty"`
	XVertexMax units.Quantity `yaml:"xVertexMax,omitempty"`
	YVertexMin units.Quantity `yaml:"yVertexMin,omitempty"`
	YVertexMax units.Quantity `yaml:"yVertexMax,omitempty"`
	ZVertexMin units.Quantity `yaml:"zVertexMin,omitempty"`
	ZVertexMax units.Quantity `yaml:"zVertexMax,omitempty"`
	// BeamDirection is nil when left at its default.
	BeamDirection *int `yaml:"beamDirection,omitempty"`
}

func (c *FlatSmearVertex) Schema() pipeline.Schema { return flatSmearSchema }

func (c *FlatSmearVertex) Build(name string) (*pipeline.Descriptor, error) {
	for _, r := range []struct {
		name     string
		min, max units.Quantity
	}{
		{"xVertex", c.XVertexMin, c.XVertexMax},
		{"yVertex", c.YVertexMin, c.YVertexMax},
		{"zVertex", c.ZVertexMin, c.ZVertexMax},
	} {
		if err := checkRange(r.name, r.min, r.max); err != nil {
			return nil, err
		}
	}

	p := &props{}
	c.Common.apply(p)
	p.quantity("xVertexMin", c.XVertexMin)
	p.quantity("xVertexMax", c.XVertexMax)
	p.quantity("yVertexMin", c.YVertexMin)
	p.quantity("yVertexMax", c.YVertexMax)
	p.quantity("zVertexMin", c.ZVertexMin)
	p.quantity("zVertexMax", c.ZVertexMax)

	if c.BeamDirection != nil {
		switch *c.BeamDirection {
		case -1, 0, 1:
			p.add("beamDirection", *c.BeamDirection)
		default:
			return nil, errors.Wrapf(ErrInvalidValue, "beamDirection %d, want -1, 0 or 1", *c.BeamDirection)
		}
	}

	return build(c, name, p)
}

// FlatFromGauss returns the box smearing covering mean ± 2σ of a gaussian smearing in x, y and z.
// Time smearing has no flat counterpart and is dropped.
func FlatFromGauss(g *GaussSmearVertex) (*FlatSmearVertex, error) {
	band := func(axis string, mean, sigma units.Quantity) (units.Quantity, units.Quantity, error) {
		if sigma.IsZero() {
			return mean, mean, nil
		}

		if mean.IsZero() {
			mean = units.New(0, sigma.Unit)
		}

		width := sigma.Scale(2)

		lo, err := mean.Sub(width)
		if err != nil {
			return units.Quantity{}, units.Quantity{}, errors.Wrapf(err, "%sVertex", axis)
		}

		hi, err := mean.Add(width)
		if err != nil {
			return units.Quantity{}, units.Quantity{}, errors.Wrapf(err, "%sVertex", axis)
		}

		return lo, hi, nil
	}

	flat := &FlatSmearVertex{Common: g.Common}

	var err error

	flat.XVertexMin, flat.XVertexMax, err = band("x", g.XVertexMean, g.XVertexSigma)
	if err != nil {
		return nil, err
	}

	flat.YVertexMin, flat.YVertexMax, err = band("y", g.YVertexMean, g.YVertexSigma)
	if err != nil {
		return nil, err
	}

	flat.ZVertexMin, flat.ZVertexMax, err = band("z", g.ZVertexMean, g.ZVertexSigma)
	if err != nil {
		return nil, err
	}

	return flat, nil
}
