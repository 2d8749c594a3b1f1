package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

// PropertySpec declares one settable property of a component type.
type PropertySpec struct {
	Name    string
	Type    model.ValueType
	Default interface{}
	Doc     string
}

// HandleSpec declares one data handle of a component type and the path it uses when nothing is linked.
type HandleSpec struct {
	Name      string
	Direction model.Direction
	Default   string
}

// Schema is the closed description of a component type: every property and handle it accepts.
type Schema struct {
	Type       string
	Kind       model.Kind
	Doc        string
	Properties []PropertySpec
	Handles    []HandleSpec
	// Requires lists service types that must be registered before any descriptor of this type.
	Requires []string
}

// Property returns the spec of the property called name.
func (s *Schema) Property(name string) (PropertySpec, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return PropertySpec{}, false
}

// Property is a property explicitly assigned on a descriptor.
type Property struct {
	Name  string
	Value interface{}
}

// P is a shorthand for building a Property.
func P(name string, value interface{}) Property {
	return Property{Name: name, Value: value}
}

// Handle is a data handle bound to a path in the event store.
type Handle struct {
	Name      string
	Direction model.Direction
	Path      string
}

// Descriptor is a named, parameterised specification of one stage, tool or service.
type Descriptor struct {
	schema  *Schema
	name    string
	props   []Property
	handles []Handle
}

// NewDescriptor creates a descriptor of the schema's type. An empty name defaults to the type name.
// Every property is checked against the schema.
func NewDescriptor(schema Schema, name string, props ...Property) (*Descriptor, error) {
	if schema.Type == "" {
		return nil, errors.Wrap(ErrInvalidName, "schema type must be set")
	}

	if _, err := model.ParseKind(string(schema.Kind)); err != nil {
		return nil, errors.Wrapf(err, "schema %s", schema.Type)
	}

	if name == "" {
		name = schema.Type
	}

	if strings.ContainsAny(name, "\"'\n\r\t /") {
		return nil, errors.Wrapf(ErrInvalidName, "%q", name)
	}

	sch := schema
	desc := &Descriptor{
		schema:  &sch,
		name:    name,
		handles: make([]Handle, 0, len(schema.Handles)),
	}

	for _, h := range schema.Handles {
		desc.handles = append(desc.handles, Handle{Name: h.Name, Direction: h.Direction, Path: h.Default})
	}

	for _, prop := range props {
		err := desc.Set(prop.Name, prop.Value)
		if err != nil {
			return nil, err
		}
	}

	return desc, nil
}

func (d *Descriptor) Name() string { return d.name }

func (d *Descriptor) Type() string { return d.schema.Type }

func (d *Descriptor) Kind() model.Kind { return d.schema.Kind }

// Schema returns a copy of the schema the descriptor was built from.
func (d *Descriptor) Schema() Schema { return *d.schema }

// Set assigns a property. Assigning the same property twice keeps its first position.
// Slices and tool descriptors are copied, so later changes to value do not reach d.
func (d *Descriptor) Set(name string, value interface{}) error {
	spec, ok := d.schema.Property(name)
	if !ok {
		return errors.Wrapf(ErrUnknownProperty, "%s has no property %q", d.schema.Type, name)
	}

	val, err := normalizeValue(spec, value)
	if err != nil {
		return errors.Wrapf(err, "%s.%s", d.name, name)
	}

	for i := range d.props {
		if d.props[i].Name == name {
			d.props[i].Value = val

			return nil
		}
	}

	d.props = append(d.props, Property{Name: name, Value: val})

	return nil
}

// Get returns the assigned value of a property, or its default. ok is false for unknown properties.
func (d *Descriptor) Get(name string) (interface{}, bool) {
	for _, p := range d.props {
		if p.Name == name {
			return copyValue(p.Value), true
		}
	}

	spec, ok := d.schema.Property(name)
	if !ok {
		return nil, false
	}

	return copyValue(spec.Default), true
}

// Properties returns the explicitly assigned properties in assignment order.
func (d *Descriptor) Properties() []Property {
	res := make([]Property, len(d.props))
	for i, p := range d.props {
		res[i] = Property{Name: p.Name, Value: copyValue(p.Value)}
	}

	return res
}

// Handles returns the data handles of the descriptor.
func (d *Descriptor) Handles() []Handle {
	res := make([]Handle, len(d.handles))
	copy(res, d.handles)

	return res
}

// SetPath binds the handle called name to path.
func (d *Descriptor) SetPath(name, path string) error {
	if path == "" {
		return errors.Wrapf(ErrEmptyPath, "%s.%s", d.name, name)
	}

	for i := range d.handles {
		if d.handles[i].Name == name {
			d.handles[i].Path = path

			return nil
		}
	}

	return errors.Wrapf(ErrHandleNotFound, "%s has no handle %q", d.schema.Type, name)
}

// Path returns the path bound to the handle called name.
func (d *Descriptor) Path(name string) (string, error) {
	for _, h := range d.handles {
		if h.Name == name {
			return h.Path, nil
		}
	}

	return "", errors.Wrapf(ErrHandleNotFound, "%s has no handle %q", d.schema.Type, name)
}

// Tools returns the tool descriptors owned by d, in assignment order. Changes made through them apply to d only.
func (d *Descriptor) Tools() []*Descriptor {
	var res []*Descriptor
	for _, p := range d.props {
		if tool, ok := p.Value.(*Descriptor); ok {
			res = append(res, tool)
		}
	}

	return res
}

// Clone returns a deep copy of the descriptor, referenced tools included.
func (d *Descriptor) Clone() *Descriptor {
	sch := *d.schema
	clone := &Descriptor{
		schema:  &sch,
		name:    d.name,
		props:   make([]Property, len(d.props)),
		handles: d.Handles(),
	}

	for i, p := range d.props {
		val := copyValue(p.Value)
		if tool, ok := val.(*Descriptor); ok {
			val = tool.Clone()
		}

		clone.props[i] = Property{Name: p.Name, Value: val}
	}

	return clone
}

func (d *Descriptor) info(index int) *model.StageInfo {
	info := &model.StageInfo{
		Kind:  d.Kind(),
		Type:  d.Type(),
		Name:  d.name,
		Index: index,
	}
	info.Handles = d.collectHandles(nil, map[*Descriptor]struct{}{})

	return info
}

func (d *Descriptor) collectHandles(acc []model.HandleInfo, seen map[*Descriptor]struct{}) []model.HandleInfo {
	if _, ok := seen[d]; ok {
		return acc
	}

	seen[d] = struct{}{}

	for _, h := range d.handles {
		acc = append(acc, model.HandleInfo{Name: h.Name, Direction: h.Direction, Path: h.Path})
	}

	for _, tool := range d.Tools() {
		acc = tool.collectHandles(acc, seen)
	}

	return acc
}

func normalizeValue(spec PropertySpec, value interface{}) (interface{}, error) {
	mismatch := func() error {
		return errors.Wrapf(ErrPropertyType, "want %s, got %T", spec.Type, value)
	}

	switch spec.Type {
	case model.BoolType:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case model.IntType:
		switch v := value.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case uint:
			return int(v), nil
		}
	case model.FloatType:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case model.StringType:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case model.IntListType:
		if v, ok := value.([]int); ok {
			return copyValue(v), nil
		}
	case model.StringListType:
		if v, ok := value.([]string); ok {
			return copyValue(v), nil
		}
	case model.LevelType:
		if v, ok := value.(model.OutputLevel); ok {
			if levelOutOfRange(v) {
				return nil, errors.Wrapf(ErrPropertyType, "invalid output level %d", int(v))
			}

			return v, nil
		}
	case model.LengthType, model.TimeType, model.EnergyType, model.AngleType:
		q, ok := value.(units.Quantity)
		if !ok {
			return nil, mismatch()
		}

		dim, _ := spec.Type.Dimension()
		if q.Dimension() != dim {
			return nil, errors.Wrapf(ErrPropertyType, "want %s, got %s", dim, q.Dimension())
		}

		return q, nil
	case model.ToolType:
		tool, ok := value.(*Descriptor)
		if !ok || tool == nil {
			return nil, mismatch()
		}

		if tool.Kind() != model.ToolKind {
			return nil, errors.Wrapf(ErrWrongKind, "want %s, got %s", model.ToolKind, tool.Kind())
		}

		// the descriptor owns a private copy of every tool it references
		return tool.Clone(), nil
	}

	return nil, mismatch()
}

func levelOutOfRange(l model.OutputLevel) bool {
	return l < model.Verbose || l > model.Always
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []int:
		if v == nil {
			return []int(nil)
		}

		res := make([]int, len(v))
		copy(res, v)

		return res
	case []string:
		if v == nil {
			return []string(nil)
		}

		res := make([]string, len(v))
		copy(res, v)

		return res
	default:
		return value
	}
}
