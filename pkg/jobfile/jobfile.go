// Package jobfile reads and writes pipelines as YAML job files.
//
// A job file lists services, tools and stages in order. Every entry names a component type and carries its
// properties, which are decoded strictly: a property the type does not declare is an error. Stages and tools
// refer to tools by id. String properties may be given as {env, path, default} and are resolved against the
// environment when the pipeline is assembled.
package jobfile

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

var (
	ErrInvalidEntry = errors.New("invalid job file entry")
	ErrUnknownTool  = errors.New("unknown tool")
)

// File is the document root.
type File struct {
	Run Run `yaml:"run"`
	// Env supplies variables missing from the process environment.
	Env      map[string]string `yaml:"env,omitempty"`
	Services []Entry           `yaml:"services,omitempty"`
	Tools    []Entry           `yaml:"tools,omitempty"`
	Stages   []Entry           `yaml:"stages"`
}

// Run holds the scalar run parameters.
type Run struct {
	EvtMax      *int              `yaml:"evtMax,omitempty"`
	EvtSel      string            `yaml:"evtSel,omitempty"`
	OutputLevel model.OutputLevel `yaml:"outputLevel,omitempty"`
}

// Entry is one service, tool or stage.
type Entry struct {
	// External names a framework service configured elsewhere. It excludes every other field.
	External string `yaml:"external,omitempty"`
	Type     string `yaml:"type,omitempty"`
	Name     string `yaml:"name,omitempty"`
	// ID is how stages refer to a tool. It defaults to the tool name.
	ID         string            `yaml:"id,omitempty"`
	Properties yaml.Node         `yaml:"properties,omitempty"`
	Paths      map[string]string `yaml:"paths,omitempty"`

	line int
}

var entryFields = map[string]struct{}{
	"external": {}, "type": {}, "name": {}, "id": {}, "properties": {}, "paths": {},
}

// UnmarshalYAML records the entry line for error messages. Node.Decode ignores KnownFields, so the keys
// are checked here.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrInvalidEntry, "line %d: entry must be a mapping", node.Line)
	}

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if _, ok := entryFields[key.Value]; !ok {
			return errors.Wrapf(ErrInvalidEntry, "line %d: unknown field %q", key.Line, key.Value)
		}
	}

	type plain Entry

	var raw plain

	err := node.Decode(&raw)
	if err != nil {
		return err
	}

	*e = Entry(raw)
	e.line = node.Line

	return nil
}

func (e *Entry) ref() string {
	if e.ID != "" {
		return e.ID
	}

	if e.Name != "" {
		return e.Name
	}

	return e.Type
}

// PathValue is a string property resolved from an environment variable.
type PathValue struct {
	Env     string  `yaml:"env"`
	Path    string  `yaml:"path"`
	Default *string `yaml:"default,omitempty"`
}

// Decode reads a job file. Unknown top-level or entry fields are errors.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	f := &File{}

	err := dec.Decode(f)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(ErrInvalidEntry, "empty job file")
		}

		return nil, errors.Wrap(err, "unable to decode job file")
	}

	return f, nil
}

// DecodeFile reads the job file at path.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return f, nil
}

// Encode writes f as YAML.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(f)
	if err != nil {
		return errors.Wrap(err, "unable to encode job file")
	}

	return errors.Wrap(enc.Close(), "unable to flush job file")
}
