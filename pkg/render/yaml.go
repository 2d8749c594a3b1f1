package render

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-jobopts/pkg/jobfile"
	"github.com/askiada/go-jobopts/pkg/pipeline"
)

// JobFile converts p into a job file that jobfile.Load assembles back into the same pipeline.
// Only explicitly set properties and non-default paths are written.
func JobFile(p *pipeline.Pipeline) (*jobfile.File, error) {
	if p == nil {
		return nil, pipeline.ErrPipelineMustBeSet
	}

	if !p.Finalized() {
		return nil, ErrNotFinalized
	}

	evtMax := p.EvtMax
	f := &jobfile.File{
		Run: jobfile.Run{EvtMax: &evtMax, EvtSel: p.EvtSel, OutputLevel: p.OutputLevel},
	}

	b := &yamlBuilder{file: f, ids: map[*pipeline.Descriptor]string{}, taken: map[string]struct{}{}}

	for _, svc := range p.Services() {
		if svc.Descriptor == nil {
			f.Services = append(f.Services, jobfile.Entry{External: svc.Name})

			continue
		}

		entry, err := b.entry(svc.Descriptor)
		if err != nil {
			return nil, err
		}

		f.Services = append(f.Services, entry)
	}

	for _, stage := range p.Stages() {
		entry, err := b.entry(stage)
		if err != nil {
			return nil, err
		}

		f.Stages = append(f.Stages, entry)
	}

	return f, nil
}

// YAML writes p as a job file.
func YAML(w io.Writer, p *pipeline.Pipeline) error {
	f, err := JobFile(p)
	if err != nil {
		return err
	}

	return jobfile.Encode(w, f)
}

type yamlBuilder struct {
	file  *jobfile.File
	ids   map[*pipeline.Descriptor]string
	taken map[string]struct{}
}

func (b *yamlBuilder) entry(d *pipeline.Descriptor) (jobfile.Entry, error) {
	entry := jobfile.Entry{Type: d.Type()}
	if d.Name() != d.Type() {
		entry.Name = d.Name()
	}

	props := yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, prop := range d.Properties() {
		value := &yaml.Node{}

		if tool, ok := prop.Value.(*pipeline.Descriptor); ok {
			id, err := b.tool(tool)
			if err != nil {
				return jobfile.Entry{}, err
			}

			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id}
		} else {
			err := value.Encode(prop.Value)
			if err != nil {
				return jobfile.Entry{}, errors.Wrapf(err, "unable to encode %s.%s", d.Name(), prop.Name)
			}
		}

		props.Content = append(props.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: prop.Name}, value)
	}

	if len(props.Content) > 0 {
		entry.Properties = props
	}

	defaults := map[string]string{}
	for _, h := range d.Schema().Handles {
		defaults[h.Name] = h.Default
	}

	for _, h := range d.Handles() {
		if h.Path == defaults[h.Name] {
			continue
		}

		if entry.Paths == nil {
			entry.Paths = map[string]string{}
		}

		entry.Paths[h.Name] = h.Path
	}

	return entry, nil
}

// tool appends the tool entry once and returns its id. Two tools sharing a name get distinct ids.
func (b *yamlBuilder) tool(d *pipeline.Descriptor) (string, error) {
	if id, ok := b.ids[d]; ok {
		return id, nil
	}

	entry, err := b.entry(d)
	if err != nil {
		return "", err
	}

	id := d.Name()
	for i := 2; ; i++ {
		if _, ok := b.taken[id]; !ok {
			break
		}

		id = d.Name() + "_" + strconv.Itoa(i)
	}

	b.taken[id] = struct{}{}
	b.ids[d] = id

	if id != d.Name() {
		entry.ID = id
	}

	b.file.Tools = append(b.file.Tools, entry)

	return id, nil
}
