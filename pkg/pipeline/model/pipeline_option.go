package model

// PipelineOption defines the interface for options hooked into the assembly of a pipeline.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// AddStage runs every time a stage is appended to the algorithm sequence.
	AddStage(stage *StageInfo) error
	// AddService runs every time a service is appended to the service list.
	AddService(service *StageInfo) error
	// Finish runs when the pipeline is finalised.
	Finish() error
}
