package pipeline

import (
	"go.uber.org/zap"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

type Option func(p *Pipeline)

// WithLogger sets the logger used while assembling. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStrictDataFlow makes Finalize fail when Validate reports any issue.
func WithStrictDataFlow() Option {
	return func(p *Pipeline) {
		p.strict = true
	}
}

// WithHook registers a pipeline option notified of every append.
func WithHook(opt model.PipelineOption) Option {
	return func(p *Pipeline) {
		if opt != nil {
			p.opts = append(p.opts, opt)
		}
	}
}

// WithRunParameters sets the scalar run parameters.
func WithRunParameters(evtMax int, evtSel string, level model.OutputLevel) Option {
	return func(p *Pipeline) {
		p.EvtMax = evtMax
		p.EvtSel = evtSel
		p.OutputLevel = level
	}
}
