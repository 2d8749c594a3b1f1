package pipeline

import (
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/internal/store"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

// DataFlow returns the producer to consumer graph of the stages, keyed by stage name, together with the
// issues found while building it. A stage reading a path gets an edge from the closest earlier stage writing it.
func (p *Pipeline) DataFlow() (graph.Graph[string, string], []Issue, error) {
	if p == nil {
		return nil, nil, ErrPipelineMustBeSet
	}

	flow := graph.NewWithStore(graph.StringHash, store.NewOrderedStore[string, string](), graph.Directed(), graph.PreventCycles())

	var issues []Issue

	infos := make([]*model.StageInfo, len(p.stages))
	for i, stage := range p.stages {
		infos[i] = stage.info(i)

		err := flow.AddVertex(stage.name,
			graph.VertexAttribute("kind", string(stage.Kind())),
			graph.VertexAttribute("type", stage.Type()),
		)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to add stage %s", stage.name)
		}
	}

	writers := make(map[string]string)

	for i, info := range infos {
		for _, path := range unique(info.Reads()) {
			producer, ok := writers[path]
			if !ok {
				issues = append(issues, readIssue(info, path, infos[i+1:]))

				continue
			}

			err := addFlowEdge(flow, producer, info.Name, path)
			if err != nil {
				return nil, nil, err
			}
		}

		for _, path := range unique(info.Writes()) {
			if first, ok := writers[path]; ok && first != info.Name {
				issues = append(issues, Issue{
					Code:       DuplicateWriter,
					Descriptor: info.Name,
					Subject:    path,
					Detail:     "already written by " + first,
				})
			}

			writers[path] = info.Name
		}
	}

	issues = append(issues, p.serviceIssues()...)

	return flow, issues, nil
}

// Validate reports dangling paths, reads before writes, duplicate writers and service ordering problems.
// It never fails because of an issue; the error is reserved for graph failures.
func (p *Pipeline) Validate() ([]Issue, error) {
	_, issues, err := p.DataFlow()

	return issues, err
}

// Dependencies returns every stage whose output the named stage transitively reads, in pipeline order.
func (p *Pipeline) Dependencies(stageName string) ([]string, error) {
	flow, _, err := p.DataFlow()
	if err != nil {
		return nil, err
	}

	if _, err := flow.Vertex(stageName); err != nil {
		return nil, errors.Wrapf(ErrUnknownStage, "%q", stageName)
	}

	preds, err := flow.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}

	seen := make(map[string]struct{})
	stack := []string{stageName}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for pred := range preds[curr] {
			if _, ok := seen[pred]; ok {
				continue
			}

			seen[pred] = struct{}{}
			stack = append(stack, pred)
		}
	}

	var res []string
	for _, stage := range p.stages {
		if _, ok := seen[stage.name]; ok {
			res = append(res, stage.name)
		}
	}

	return res, nil
}

func addFlowEdge(flow graph.Graph[string, string], producer, consumer, path string) error {
	err := flow.AddEdge(producer, consumer, graph.EdgeAttribute("label", path))
	if err == nil {
		return nil
	}

	if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", producer, consumer)
	}

	edge, err := flow.Edge(producer, consumer)
	if err != nil {
		return errors.Wrap(err, "unable to get edge")
	}

	labels := strings.Split(edge.Properties.Attributes["label"], ",")
	labels = append(labels, path)
	sort.Strings(labels)

	err = flow.UpdateEdge(producer, consumer, graph.EdgeAttribute("label", strings.Join(unique(labels), ",")))
	if err != nil {
		return errors.Wrap(err, "unable to update edge")
	}

	return nil
}

func readIssue(info *model.StageInfo, path string, later []*model.StageInfo) Issue {
	for _, next := range later {
		for _, written := range next.Writes() {
			if written == path {
				return Issue{
					Code:       ReadBeforeWrite,
					Descriptor: info.Name,
					Subject:    path,
					Detail:     "only written later by " + next.Name,
				}
			}
		}
	}

	return Issue{
		Code:       DanglingPath,
		Descriptor: info.Name,
		Subject:    path,
		Detail:     "no stage writes this path",
	}
}

func (p *Pipeline) serviceIssues() []Issue {
	var issues []Issue

	position := func(req string) int {
		for i, svc := range p.services {
			if svc.Name == req || (svc.Descriptor != nil && svc.Descriptor.Type() == req) {
				return i
			}
		}

		return -1
	}

	for i, svc := range p.services {
		if svc.Descriptor == nil {
			continue
		}

		for _, req := range svc.Descriptor.schema.Requires {
			switch pos := position(req); {
			case pos < 0:
				issues = append(issues, Issue{Code: MissingService, Descriptor: svc.Name, Subject: req, Detail: "required service is not registered"})
			case pos > i:
				issues = append(issues, Issue{Code: ServiceOrder, Descriptor: svc.Name, Subject: req, Detail: "required service is registered later"})
			}
		}
	}

	for _, stage := range p.stages {
		for _, req := range stage.requires() {
			if position(req) < 0 {
				issues = append(issues, Issue{Code: MissingService, Descriptor: stage.name, Subject: req, Detail: "required service is not registered"})
			}
		}
	}

	return issues
}

func (d *Descriptor) requires() []string {
	res := append([]string(nil), d.schema.Requires...)
	for _, tool := range d.Tools() {
		res = append(res, tool.requires()...)
	}

	return unique(res)
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	res := make([]string, 0, len(in))

	for _, s := range in {
		if s == "" {
			continue
		}

		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		res = append(res, s)
	}

	return res
}
