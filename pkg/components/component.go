package components

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

var (
	ErrUnknownType  = errors.New("unknown component type")
	ErrInvalidValue = errors.New("invalid property value")
)

// Component is the typed configuration of one component type.
type Component interface {
	// Schema describes the type.
	Schema() pipeline.Schema
	// Build returns a descriptor carrying the non-default fields of the component.
	Build(name string) (*pipeline.Descriptor, error)
}

// ToolSetter is implemented by components holding tool references. Tools are set before Build.
type ToolSetter interface {
	SetTool(property string, tool *pipeline.Descriptor) error
}

// Common holds the options every framework component accepts.
type Common struct {
	OutputLevel model.OutputLevel `yaml:"OutputLevel,omitempty"`
}

func (c Common) apply(p *props) {
	if c.OutputLevel != 0 {
		p.add("OutputLevel", c.OutputLevel)
	}
}

var outputLevelSpec = pipeline.PropertySpec{Name: "OutputLevel", Type: model.LevelType, Default: model.Info, Doc: "message verbosity"}

func withCommon(schema pipeline.Schema) pipeline.Schema {
	schema.Properties = append([]pipeline.PropertySpec{outputLevelSpec}, schema.Properties...)

	return schema
}

// Factory returns a zero-valued component ready to be decoded into.
type Factory func() Component

var registry = map[string]Factory{}

func register(f Factory) {
	registry[f().Schema().Type] = f
}

// Lookup returns the factory of a component type.
func Lookup(componentType string) (Factory, error) {
	f, ok := registry[componentType]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", componentType)
	}

	return f, nil
}

// Types lists the registered component types, sorted.
func Types() []string {
	res := make([]string, 0, len(registry))
	for t := range registry {
		res = append(res, t)
	}

	sort.Strings(res)

	return res
}

// Schemas returns the schema of every registered type, sorted by type.
func Schemas() []pipeline.Schema {
	types := Types()
	res := make([]pipeline.Schema, 0, len(types))

	for _, t := range types {
		res = append(res, registry[t]().Schema())
	}

	return res
}

// props accumulates the explicitly set properties of a component, skipping defaults.
type props struct {
	list []pipeline.Property
}

func (p *props) add(name string, value interface{}) {
	p.list = append(p.list, pipeline.P(name, value))
}

func (p *props) str(name, v string) {
	if v != "" {
		p.add(name, v)
	}
}

func (p *props) integer(name string, v int) {
	if v != 0 {
		p.add(name, v)
	}
}

func (p *props) float(name string, v float64) {
	if v != 0 {
		p.add(name, v)
	}
}

func (p *props) optFloat(name string, v *float64) {
	if v != nil {
		p.add(name, *v)
	}
}

func (p *props) flag(name string, v bool) {
	if v {
		p.add(name, v)
	}
}

func (p *props) optFlag(name string, v *bool) {
	if v != nil {
		p.add(name, *v)
	}
}

func (p *props) ints(name string, v []int) {
	if v != nil {
		p.add(name, v)
	}
}

func (p *props) strs(name string, v []string) {
	if v != nil {
		p.add(name, v)
	}
}

func (p *props) quantity(name string, q units.Quantity) {
	if !q.IsZero() {
		p.add(name, q)
	}
}

func (p *props) tool(name string, d *pipeline.Descriptor) {
	if d != nil {
		p.add(name, d)
	}
}

func build(c Component, name string, p *props) (*pipeline.Descriptor, error) {
	desc, err := pipeline.NewDescriptor(c.Schema(), name, p.list...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build %s", c.Schema().Type)
	}

	return desc, nil
}

// Bool returns a pointer to v, for options whose default is true.
func Bool(v bool) *bool {
	return &v
}

// Float returns a pointer to v, for float options whose default is not zero.
func Float(v float64) *float64 {
	return &v
}
