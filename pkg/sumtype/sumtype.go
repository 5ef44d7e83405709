// Package sumtype checks and runs programs that use anonymous sum types.
//
// It is the embedding API: a host hands over source text and receives
// positioned diagnostics, and optionally the program's printed output.
//
//	diags := sumtype.Check(src, sumtype.WithFile("prog.sum"))
//	if sumtype.HasErrors(diags) {
//		...
//	}
package sumtype

import (
	"context"
	"fmt"
	"io"

	"github.com/funvibe/anonsum/internal/analyzer"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/evaluator"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/parser"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/token"
)

// Ordering policies accepted by WithOrdering.
const (
	OrderingNone           = config.OrderingNone
	OrderingTagThenPayload = config.OrderingTagThenPayload
)

// Diagnostic is one positioned problem found while checking or running.
type Diagnostic struct {
	Code    string
	Warning bool
	File    string
	Line    int
	Column  int
	Message string
	Notes   []string
	// Missing lists the uncovered slot indices of a non-exhaustive match.
	Missing []int
}

// String renders the diagnostic as file:line:col: [CODE] message.
func (d Diagnostic) String() string {
	prefix := fmt.Sprintf("%d:%d: ", d.Line, d.Column)
	if d.File != "" {
		prefix = d.File + ":" + prefix
	}
	if d.Warning {
		prefix += "warning: "
	}
	s := fmt.Sprintf("%s[%s] %s", prefix, d.Code, d.Message)
	for _, n := range d.Notes {
		s += "\n\t" + n
	}
	return s
}

// HasErrors reports whether any diagnostic is an error rather than a
// warning.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if !d.Warning {
			return true
		}
	}
	return false
}

// Option configures a Check or Run call.
type Option func(*options)

type options struct {
	ctx       context.Context
	file      string
	settings  *config.Settings
	configErr error
}

// WithContext bounds the call by ctx. Cancellation stops evaluation with
// an R001 diagnostic.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithFile sets the file name reported in diagnostics.
func WithFile(name string) Option {
	return func(o *options) { o.file = name }
}

// WithMaxSlots sets the largest accepted slot count of a single sum.
func WithMaxSlots(n int) Option {
	return func(o *options) { o.settings.Limits.MaxSlots = n }
}

// AllowDegenerateSums accepts zero- and one-slot sums.
func AllowDegenerateSums() Option {
	return func(o *options) { o.settings.Policy.DegenerateSums = config.DegenerateAllow }
}

// WithOrdering selects the ordering policy for PartialOrd and Ord on sums.
func WithOrdering(policy string) Option {
	return func(o *options) { o.settings.Policy.Ordering = policy }
}

// WithConfig replaces the settings with the contents of a sumcheck.yaml
// document. Options after it still apply. An invalid document is reported
// as a diagnostic by Check and Run.
func WithConfig(data []byte) Option {
	return func(o *options) {
		s, err := config.ParseSettings(data, config.SettingsFileName)
		if err != nil {
			o.configErr = err
			return
		}
		o.settings = s
	}
}

// Check lexes, parses and analyzes src.
func Check(src string, opts ...Option) []Diagnostic {
	return process(src, nil, opts)
}

// Run checks src and, when it has no errors, evaluates it with print
// output written to w. Warnings do not prevent evaluation.
func Run(src string, w io.Writer, opts ...Option) []Diagnostic {
	if w == nil {
		w = io.Discard
	}
	return process(src, w, opts)
}

func process(src string, w io.Writer, opts []Option) []Diagnostic {
	o := &options{ctx: context.Background(), settings: config.DefaultSettings()}
	for _, opt := range opts {
		opt(o)
	}
	if o.configErr != nil {
		return []Diagnostic{{Code: string(diagnostics.ErrP001), File: o.file, Message: o.configErr.Error()}}
	}

	ctx := pipeline.NewPipelineContext(src)
	ctx.Context = o.ctx
	ctx.FilePath = o.file
	ctx.Settings = o.settings
	ctx.Interner = analyzer.InternerFor(o.settings)
	ctx.Output = w

	processors := []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	}
	if w != nil {
		processors = append(processors, &evaluator.EvaluatorProcessor{})
	}
	ctx = pipeline.New(processors...).Run(ctx)
	if err := o.ctx.Err(); err != nil && !ctx.Failed() {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrR001, token.Token{}, "%s", err))
	}
	return convert(diagnostics.Sort(ctx.Errors))
}

func convert(errs []*diagnostics.DiagnosticError) []Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, Diagnostic{
			Code:    string(e.Code),
			Warning: e.IsWarning(),
			File:    e.File,
			Line:    e.Token.Line,
			Column:  e.Token.Column,
			Message: e.Message,
			Notes:   e.Notes,
			Missing: e.Missing,
		})
	}
	return out
}
