// Package scenarios holds ready-made pipelines for the standard generation jobs.
//
// Every scenario reads the environment through an envpath.LookupFunc, so tests and job files can pin the
// directories that the framework installation would normally export.
package scenarios

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/pipeline"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// K4Gen names the variable pointing at the generation package data.
const K4Gen = "K4GEN"

// RndmGenSvc is the framework random number service, referenced by name only.
const RndmGenSvc = "RndmGenSvc"

// Builder assembles and finalizes one scenario. opts are applied after the scenario run parameters.
type Builder func(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error)

// Scenario is a named ready-made pipeline.
type Scenario struct {
	Name  string
	Doc   string
	Build Builder
}

var registry = map[string]Scenario{}

func register(s Scenario) {
	registry[s.Name] = s
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, error) {
	s, ok := registry[name]
	if !ok {
		return Scenario{}, errors.Wrapf(ErrUnknownScenario, "%q", name)
	}

	return s, nil
}

// List returns every scenario sorted by name.
func List() []Scenario {
	res := make([]Scenario, 0, len(registry))
	for _, s := range registry {
		res = append(res, s)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })

	return res
}

// assemble creates a pipeline, lets fill append to it and finalizes it.
func assemble(run pipeline.Option, opts []pipeline.Option, fill func(p *pipeline.Pipeline) error) (*pipeline.Pipeline, error) {
	p, err := pipeline.New(append([]pipeline.Option{run}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	err = fill(p)
	if err != nil {
		return nil, err
	}

	err = p.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, "unable to finalize pipeline")
	}

	return p, nil
}

func addStages(p *pipeline.Pipeline, stages ...*pipeline.Descriptor) error {
	for _, stage := range stages {
		err := p.AddStage(stage)
		if err != nil {
			return errors.Wrapf(err, "unable to add stage %s", stage.Name())
		}
	}

	return nil
}

// link binds consecutive producer/consumer pairs.
func link(links ...linkSpec) error {
	for _, l := range links {
		err := pipeline.Link(l.path, l.from, l.to, l.opts...)
		if err != nil {
			return errors.Wrapf(err, "unable to link %s to %s", l.from.Name(), l.to.Name())
		}
	}

	return nil
}

type linkSpec struct {
	path     string
	from, to *pipeline.Descriptor
	opts     []pipeline.LinkOption
}
