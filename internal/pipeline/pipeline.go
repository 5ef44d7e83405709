package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Context != nil && ctx.Context.Err() != nil {
			break
		}
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages.
		// Stages that need a well-formed input check ctx.Failed themselves.
	}
	return ctx
}
