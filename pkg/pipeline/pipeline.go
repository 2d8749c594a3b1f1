package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

const (
	// DefaultEvtSel disables the framework event selector: events are produced by the first stage.
	DefaultEvtSel = "NONE"
	// DefaultEvtMax is the framework default, meaning all events.
	DefaultEvtMax = -1
)

// ServiceRef is one entry of the service list. Descriptor is nil for services referenced by name only.
type ServiceRef struct {
	Name       string
	Descriptor *Descriptor
}

// Pipeline accumulates the stages and services of one job. Once finalized it only serves reads.
type Pipeline struct {
	logger   *zap.Logger
	opts     []model.PipelineOption
	stages   []*Descriptor
	services []ServiceRef
	strict   bool
	final    bool

	EvtMax      int
	EvtSel      string
	OutputLevel model.OutputLevel
}

// New creates a new pipeline.
func New(opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		logger:      zap.NewNop(),
		EvtMax:      DefaultEvtMax,
		EvtSel:      DefaultEvtSel,
		OutputLevel: model.Info,
	}

	for _, opt := range opts {
		opt(pipe)
	}

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// AddStage appends a stage to the algorithm sequence. Order is execution order.
func (p *Pipeline) AddStage(desc *Descriptor) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if desc == nil {
		return ErrDescriptorMustBeSet
	}

	if p.final {
		return errors.Wrapf(ErrPipelineFinalized, "unable to add stage %s", desc.name)
	}

	if !desc.Kind().IsStage() {
		return errors.Wrapf(ErrWrongKind, "%s is a %s, not a stage", desc.name, desc.Kind())
	}

	for _, stage := range p.stages {
		if stage.name == desc.name {
			return errors.Wrapf(ErrDuplicateName, "stage %s", desc.name)
		}
	}

	info := desc.info(len(p.stages))
	for _, opt := range p.opts {
		err := opt.AddStage(info)
		if err != nil {
			return errors.Wrap(err, "unable to run add stage function")
		}
	}

	p.stages = append(p.stages, desc)
	p.logger.Debug("stage added",
		zap.String("name", desc.name),
		zap.String("type", desc.Type()),
		zap.String("kind", string(desc.Kind())),
		zap.Int("position", info.Index),
	)

	return nil
}

// AddService appends a configured service to the service list.
func (p *Pipeline) AddService(desc *Descriptor) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if desc == nil {
		return ErrDescriptorMustBeSet
	}

	if desc.Kind() != model.ServiceKind {
		return errors.Wrapf(ErrWrongKind, "%s is a %s, not a service", desc.name, desc.Kind())
	}

	return p.addService(ServiceRef{Name: desc.name, Descriptor: desc})
}

// AddExternalService appends a service known to the framework by name only, such as RndmGenSvc.
func (p *Pipeline) AddExternalService(name string) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if name == "" {
		return errors.Wrap(ErrInvalidName, "service name must be set")
	}

	return p.addService(ServiceRef{Name: name})
}

func (p *Pipeline) addService(ref ServiceRef) error {
	if p.final {
		return errors.Wrapf(ErrPipelineFinalized, "unable to add service %s", ref.Name)
	}

	for _, svc := range p.services {
		if svc.Name == ref.Name {
			return errors.Wrapf(ErrDuplicateName, "service %s", ref.Name)
		}
	}

	info := &model.StageInfo{Kind: model.ServiceKind, Type: ref.Name, Name: ref.Name, Index: len(p.services)}
	if ref.Descriptor != nil {
		info = ref.Descriptor.info(len(p.services))
	}

	for _, opt := range p.opts {
		err := opt.AddService(info)
		if err != nil {
			return errors.Wrap(err, "unable to run add service function")
		}
	}

	p.services = append(p.services, ref)
	p.logger.Debug("service added", zap.String("name", ref.Name), zap.Int("position", info.Index))

	return nil
}

// Stages returns the algorithm sequence in execution order.
func (p *Pipeline) Stages() []*Descriptor {
	res := make([]*Descriptor, len(p.stages))
	copy(res, p.stages)

	return res
}

// Services returns the service list in registration order.
func (p *Pipeline) Services() []ServiceRef {
	res := make([]ServiceRef, len(p.services))
	copy(res, p.services)

	return res
}

// Stage returns the stage called name.
func (p *Pipeline) Stage(name string) (*Descriptor, error) {
	for _, stage := range p.stages {
		if stage.name == name {
			return stage, nil
		}
	}

	return nil, errors.Wrapf(ErrUnknownStage, "%q", name)
}

// Finalized reports whether Finalize succeeded.
func (p *Pipeline) Finalized() bool {
	return p.final
}

// Finalize ends the accumulation phase. In strict mode any data-flow issue is an error.
func (p *Pipeline) Finalize() error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if p.final {
		return ErrPipelineFinalized
	}

	issues, err := p.Validate()
	if err != nil {
		return errors.Wrap(err, "unable to validate pipeline")
	}

	for _, issue := range issues {
		p.logger.Warn("data-flow issue",
			zap.String("code", string(issue.Code)),
			zap.String("descriptor", issue.Descriptor),
			zap.String("subject", issue.Subject),
			zap.String("detail", issue.Detail),
		)
	}

	if p.strict && len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	p.final = true
	p.logger.Info("pipeline finalized",
		zap.Int("stages", len(p.stages)),
		zap.Int("services", len(p.services)),
		zap.Int("evtMax", p.EvtMax),
		zap.Int("issues", len(issues)),
	)

	return nil
}
