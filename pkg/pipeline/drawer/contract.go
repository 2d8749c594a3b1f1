package drawer

import "github.com/askiada/go-jobopts/pkg/pipeline/model"

// Drawer is an interface that defines the methods for drawing the data flow of a pipeline.
type Drawer interface {
	// AddStep adds a stage to the drawing.
	AddStep(name, componentType string, kind model.Kind) error
	// AddLink adds an edge from the stage writing path to the stage reading it.
	AddLink(parentStepName, childrenStepName, path string) error
	// AddDangling marks a path read by a stage that no earlier stage writes.
	AddDangling(stepName, path string) error
	// Draw writes the graph.
	Draw() error
}
