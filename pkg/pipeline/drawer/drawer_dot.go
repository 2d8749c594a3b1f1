package drawer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-jobopts/internal/store"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

const danglingPrefix = "?"

// DOTDrawer is a drawer that writes the data flow of a pipeline as a Graphviz digraph.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	order []string
	out   io.Writer
}

// NewDOTDrawer creates a new DOT drawer writing to out.
func NewDOTDrawer(out io.Writer) *DOTDrawer {
	return &DOTDrawer{
		out:   out,
		graph: graph.NewWithStore(graph.StringHash, store.NewOrderedStore[string, string](), graph.Directed()),
	}
}

// palette gives each kind its fill colour.
var palette = map[model.Kind][3]uint8{
	model.GeneratorKind: {144, 202, 249},
	model.ReaderKind:    {129, 212, 250},
	model.ConverterKind: {197, 225, 165},
	model.FilterKind:    {255, 224, 130},
	model.MonitorKind:   {206, 147, 216},
	model.WriterKind:    {255, 171, 145},
	model.ToolKind:      {224, 224, 224},
	model.ServiceKind:   {176, 190, 197},
}

// KindColour returns the fill colour used for kind as a hex string.
func KindColour(kind model.Kind) (string, error) {
	rgb, ok := palette[kind]
	if !ok {
		return "", errors.Wrapf(model.ErrUnknownKind, "%q", kind)
	}

	c, err := colors.RGB(rgb[0], rgb[1], rgb[2])
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return c.ToHEX().String(), nil
}

// AddStep adds a stage to the graph.
func (d *DOTDrawer) AddStep(name, componentType string, kind model.Kind) error {
	colour, err := KindColour(kind)
	if err != nil {
		return err
	}

	err = d.graph.AddVertex(name,
		graph.VertexAttribute("xlabel", componentType),
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", colour),
		graph.VertexAttribute("shape", "box"),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	d.order = append(d.order, name)

	return nil
}

// AddLink adds a link between parent and children steps. Several paths between the same steps share one edge.
func (d *DOTDrawer) AddLink(parentName, childrenName, path string) error {
	err := d.graph.AddEdge(parentName, childrenName, graph.EdgeAttribute("label", path))
	if err == nil {
		return nil
	}

	if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	edge, err := d.graph.Edge(parentName, childrenName)
	if err != nil {
		return errors.Wrap(err, "unable to get edge")
	}

	labels := append(strings.Split(edge.Properties.Attributes["label"], "\\n"), path)
	sort.Strings(labels)

	err = d.graph.UpdateEdge(parentName, childrenName, graph.EdgeAttribute("label", strings.Join(labels, "\\n")))
	if err != nil {
		return errors.Wrap(err, "unable to update edge")
	}

	return nil
}

// AddDangling draws the unresolved path as a dashed red node feeding the step.
func (d *DOTDrawer) AddDangling(stepName, path string) error {
	name := danglingPrefix + path

	err := d.graph.AddVertex(name,
		graph.VertexAttribute("shape", "ellipse"),
		graph.VertexAttribute("style", "dashed"),
		graph.VertexAttribute("color", "red"),
	)
	switch {
	case err == nil:
		d.order = append(d.order, name)
	case !errors.Is(err, graph.ErrVertexAlreadyExists):
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	err = d.graph.AddEdge(name, stepName, graph.EdgeAttribute("color", "red"), graph.EdgeAttribute("style", "dashed"))
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", name, stepName)
	}

	return nil
}

// Draw writes the graph in the DOT language.
func (d *DOTDrawer) Draw() error {
	err := dot(d.graph, d.order, d.out, GraphAttribute("rankdir", "LR"))
	if err != nil {
		return errors.Wrap(err, "unable to write dot graph")
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
{{- range $k, $v := .Attributes}}
	{{$k}}="{{$v}}";
{{- end}}
{{- range $s := .Statements}}
	"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}}{{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.SourceWeight}} ]{{end}};
{{- end}}
}
`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], vertices []K, wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, vertices, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option setting a graph-level attribute.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT lists vertices in the given order, then edges in store order, so the output is stable.
func generateDOT[K comparable, T any](gra graph.Graph[K, T], vertices []K, options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(sourceProperties.Attributes))
		htmlAttributes := make(map[string]string)

		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="10">%s</FONT>>`, vertex, v)

				continue
			}

			attributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := gra.Edges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
