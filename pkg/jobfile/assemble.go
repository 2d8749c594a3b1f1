package jobfile

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

// Load decodes a job file and assembles its finalized pipeline.
func Load(r io.Reader, lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return f.Assemble(lookup, opts...)
}

// LoadFile is Load for the job file at path.
func LoadFile(path string, lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	f, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}

	p, err := f.Assemble(lookup, opts...)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return p, nil
}

type assembler struct {
	lookup envpath.LookupFunc
	tools  map[string]*pipeline.Descriptor
}

// Assemble builds and finalizes the pipeline described by f. Variables are read through lookup, falling back
// to the env section of the file. A nil lookup reads the process environment.
func (f *File) Assemble(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	a := &assembler{
		lookup: func(key string) (string, bool) {
			if v, ok := lookup(key); ok {
				return v, true
			}

			v, ok := f.Env[key]

			return v, ok
		},
		tools: make(map[string]*pipeline.Descriptor),
	}

	evtMax := pipeline.DefaultEvtMax
	if f.Run.EvtMax != nil {
		evtMax = *f.Run.EvtMax
	}

	evtSel := f.Run.EvtSel
	if evtSel == "" {
		evtSel = pipeline.DefaultEvtSel
	}

	level := f.Run.OutputLevel
	if level == 0 {
		level = model.Info
	}

	p, err := pipeline.New(append([]pipeline.Option{pipeline.WithRunParameters(evtMax, evtSel, level)}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	for i := range f.Tools {
		entry := &f.Tools[i]

		tool, err := a.build(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "tools[%d]", i)
		}

		if tool.Kind() != model.ToolKind {
			return nil, errors.Wrapf(pipeline.ErrWrongKind, "tools[%d]: %s is a %s", i, tool.Type(), tool.Kind())
		}

		if _, ok := a.tools[entry.ref()]; ok {
			return nil, errors.Wrapf(pipeline.ErrDuplicateName, "tools[%d]: id %s", i, entry.ref())
		}

		a.tools[entry.ref()] = tool
	}

	for i := range f.Services {
		entry := &f.Services[i]

		err = a.addService(p, entry)
		if err != nil {
			return nil, errors.Wrapf(err, "services[%d]", i)
		}
	}

	for i := range f.Stages {
		entry := &f.Stages[i]

		stage, err := a.build(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}

		err = p.AddStage(stage)
		if err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
	}

	err = p.Finalize()
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (a *assembler) addService(p *pipeline.Pipeline, entry *Entry) error {
	if entry.External != "" {
		if entry.Type != "" || entry.Name != "" || entry.Properties.Kind != 0 || len(entry.Paths) > 0 {
			return errors.Wrapf(ErrInvalidEntry, "line %d: external service %s takes no other field", entry.line, entry.External)
		}

		return p.AddExternalService(entry.External)
	}

	svc, err := a.build(entry)
	if err != nil {
		return err
	}

	return p.AddService(svc)
}

// build decodes the entry into its component and builds the descriptor.
func (a *assembler) build(entry *Entry) (*pipeline.Descriptor, error) {
	if entry.Type == "" {
		return nil, errors.Wrapf(ErrInvalidEntry, "line %d: type must be set", entry.line)
	}

	factory, err := components.Lookup(entry.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", entry.line)
	}

	comp := factory()
	schema := comp.Schema()

	err = a.decodeProperties(comp, schema, &entry.Properties)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d: %s", entry.line, entry.Type)
	}

	desc, err := comp.Build(entry.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", entry.line)
	}

	for handle, path := range entry.Paths {
		err = desc.SetPath(handle, path)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", entry.line)
		}
	}

	return desc, nil
}

func (a *assembler) decodeProperties(comp components.Component, schema pipeline.Schema, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrInvalidEntry, "line %d: properties must be a mapping", node.Line)
	}

	plain := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		spec, ok := schema.Property(key.Value)
		if !ok {
			return errors.Wrapf(pipeline.ErrUnknownProperty, "line %d: %s has no property %q", key.Line, schema.Type, key.Value)
		}

		switch spec.Type {
		case model.ToolType:
			err := a.setTool(comp, spec.Name, value)
			if err != nil {
				return err
			}

			continue
		case model.StringType:
			resolved, err := a.resolvePath(value)
			if err != nil {
				return err
			}

			value = resolved
		case model.StringListType:
			if value.Kind == yaml.SequenceNode {
				list := *value
				list.Content = make([]*yaml.Node, len(value.Content))

				for j, item := range value.Content {
					resolved, err := a.resolvePath(item)
					if err != nil {
						return err
					}

					list.Content[j] = resolved
				}

				value = &list
			}
		}

		plain.Content = append(plain.Content, key, value)
	}

	data, err := yaml.Marshal(plain)
	if err != nil {
		return errors.Wrap(err, "unable to re-encode properties")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(comp)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "unable to decode properties")
	}

	return nil
}

func (a *assembler) setTool(comp components.Component, property string, value *yaml.Node) error {
	setter, ok := comp.(components.ToolSetter)
	if !ok {
		return errors.Wrapf(ErrInvalidEntry, "%s takes no tools", comp.Schema().Type)
	}

	if value.Kind != yaml.ScalarNode {
		return errors.Wrapf(ErrInvalidEntry, "line %d: tool %s must be a tool id", value.Line, property)
	}

	tool, ok := a.tools[value.Value]
	if !ok {
		return errors.Wrapf(ErrUnknownTool, "line %d: %q", value.Line, value.Value)
	}

	// the stage keeps its own copy, as the framework clones public tools into private ones
	return setter.SetTool(property, tool)
}

// resolvePath turns a {env, path, default} mapping into a plain string node. Other nodes pass through.
func (a *assembler) resolvePath(value *yaml.Node) (*yaml.Node, error) {
	if value.Kind != yaml.MappingNode {
		return value, nil
	}

	var pv PathValue

	dec := yaml.NewDecoder(bytes.NewReader(mustMarshal(value)))
	dec.KnownFields(true)

	err := dec.Decode(&pv)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidEntry, "line %d: path value: %v", value.Line, err)
	}

	if pv.Env == "" {
		return nil, errors.Wrapf(ErrInvalidEntry, "line %d: path value needs env", value.Line)
	}

	opts := []envpath.Option{envpath.WithLookup(a.lookup)}
	if pv.Default != nil {
		opts = append(opts, envpath.WithDefault(*pv.Default))
	}

	resolved, err := envpath.Resolve(pv.Env, pv.Path, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", value.Line)
	}

	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: resolved, Line: value.Line}, nil
}

func mustMarshal(node *yaml.Node) []byte {
	data, err := yaml.Marshal(node)
	if err != nil {
		// a node that came out of the decoder always encodes
		panic(err)
	}

	return data
}
