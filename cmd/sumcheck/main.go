// Command sumcheck checks and runs programs that use anonymous sum types.
//
// Usage:
//
//	sumcheck check [flags] FILE|DIR...
//	sumcheck run [flags] FILE
//
// Directories are searched for .sum and .sums files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/funvibe/anonsum/internal/analyzer"
	"github.com/funvibe/anonsum/internal/catalog"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/evaluator"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/parser"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/typesystem"
	"github.com/funvibe/anonsum/internal/utils"
	"github.com/kr/pretty"
	"golang.org/x/sync/errgroup"
)

const usage = `Usage:
  sumcheck check [flags] FILE|DIR...   check files concurrently
  sumcheck run [flags] FILE            check and evaluate one file

Flags:
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "sumcheck: internal error: %v\n", r)
			os.Exit(2)
		}
	}()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// command holds the parsed flags of one invocation.
type command struct {
	name     string
	files    []string
	config   string
	catalog  string
	dump     bool
	color    string
	settings *config.Settings
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "sumcheck: %s\n", err)
		return 2
	}
	if err := cmd.loadSettings(); err != nil {
		fmt.Fprintf(stderr, "sumcheck: %s\n", err)
		return 1
	}

	in := typesystem.NewInterner(cmd.settings.Limits.MaxSlots)
	var results []*pipeline.PipelineContext
	switch cmd.name {
	case "check":
		results, err = checkFiles(ctx, cmd.files, cmd.settings, in)
	case "run":
		var res *pipeline.PipelineContext
		res, err = runFile(ctx, cmd.files[0], cmd.settings, in, stdout)
		results = []*pipeline.PipelineContext{res}
	}
	if err != nil {
		fmt.Fprintf(stderr, "sumcheck: %s\n", err)
		return 1
	}

	p := newPrinter(stderr, cmd.color)
	failed := false
	for _, res := range results {
		for _, d := range diagnostics.Sort(res.Errors) {
			p.diagnostic(d)
		}
		failed = failed || res.Failed()
	}

	if cmd.catalog != "" {
		if err := record(ctx, cmd.catalog, in, results); err != nil {
			fmt.Fprintf(stderr, "sumcheck: %s\n", err)
			return 1
		}
	}
	if cmd.dump {
		dump(stdout, in)
	}
	if failed {
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*command, error) {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return nil, errors.New("no command")
	}
	cmd := &command{name: args[0]}
	switch cmd.name {
	case "check", "run":
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stderr, usage)
		return nil, flag.ErrHelp
	default:
		return nil, fmt.Errorf("unknown command %q (want check or run)", cmd.name)
	}

	fs := flag.NewFlagSet("sumcheck "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cmd.config, "config", "", "path of sumcheck.yaml (default: search upward from the first file)")
	fs.StringVar(&cmd.catalog, "catalog", "", "record descriptors and derivations in this SQLite catalog")
	fs.BoolVar(&cmd.dump, "dump", false, "print every interned descriptor after checking")
	fs.StringVar(&cmd.color, "color", "", "colour diagnostics: auto, always or never")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	files, err := utils.ExpandSources(fs.Args())
	if err != nil {
		return nil, err
	}
	cmd.files = files
	switch {
	case len(cmd.files) == 0:
		return nil, fmt.Errorf("%s: no input files", cmd.name)
	case cmd.name == "run" && len(cmd.files) != 1:
		return nil, fmt.Errorf("run: expected exactly one file, got %d", len(cmd.files))
	}
	switch cmd.color {
	case "", config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return nil, fmt.Errorf("-color must be %s, %s or %s, got %q",
			config.ColorAuto, config.ColorAlways, config.ColorNever, cmd.color)
	}
	return cmd, nil
}

// loadSettings reads -config, or the sumcheck.yaml found above the first
// file. Flags override the file.
func (c *command) loadSettings() error {
	path := c.config
	if path == "" {
		found, err := config.FindSettings(filepath.Dir(c.files[0]))
		if err != nil {
			return err
		}
		path = found
	}
	if path == "" {
		c.settings = config.DefaultSettings()
	} else {
		s, err := config.LoadSettings(path)
		if err != nil {
			return err
		}
		c.settings = s
	}

	if c.catalog == "" {
		c.catalog = c.settings.Catalog
	}
	if c.color == "" {
		c.color = c.settings.Output.Color
	}
	return nil
}

// newContext prepares one file for the pipeline. Files checked together
// share the interner; each gets its own deriver.
func newContext(ctx context.Context, path, src string, settings *config.Settings, in *typesystem.Interner) *pipeline.PipelineContext {
	pc := pipeline.NewPipelineContext(src)
	pc.Context = ctx
	pc.FilePath = path
	pc.Settings = settings
	pc.Interner = in
	pc.Deriver = typesystem.NewDeriver(typesystem.NewImplTable(), settings.Policy.Ordering)
	return pc
}

func frontEnd() []pipeline.Processor {
	return []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	}
}

// checkFiles checks every file concurrently. Results keep argument order.
// An unreadable file cancels the remaining checks.
func checkFiles(ctx context.Context, files []string, settings *config.Settings, in *typesystem.Interner) ([]*pipeline.PipelineContext, error) {
	results := make([]*pipeline.PipelineContext, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			pc := newContext(ctx, path, string(src), settings, in)
			results[i] = pipeline.New(frontEnd()...).Run(pc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runFile(ctx context.Context, path string, settings *config.Settings, in *typesystem.Interner, stdout io.Writer) (*pipeline.PipelineContext, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pc := newContext(ctx, path, string(src), settings, in)
	pc.Output = stdout
	processors := append(frontEnd(), &evaluator.EvaluatorProcessor{})
	return pipeline.New(processors...).Run(pc), nil
}

// record stores every interned descriptor and every derivation performed
// by the checks.
func record(ctx context.Context, path string, in *typesystem.Interner, results []*pipeline.PipelineContext) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("catalog directory: %w", err)
		}
	}
	cat, err := catalog.Open(ctx, path, in)
	if err != nil {
		return err
	}
	defer cat.Close()

	for _, sum := range in.All() {
		if _, err := cat.RecordSum(ctx, sum); err != nil {
			return err
		}
	}
	for _, res := range results {
		for _, d := range res.Derivations {
			if _, ok := d.Type.(*typesystem.TSum); !ok {
				continue
			}
			if err := cat.RecordDerivation(ctx, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// descriptorDump is the -dump view of one interned descriptor.
type descriptorDump struct {
	Fingerprint string
	Display     string
	Slots       []string
}

func dump(w io.Writer, in *typesystem.Interner) {
	all := in.All()
	out := make([]descriptorDump, 0, len(all))
	for _, sum := range all {
		d := descriptorDump{Fingerprint: typesystem.Fingerprint(sum).String(), Display: sum.String()}
		for _, slot := range sum.Slots {
			d.Slots = append(d.Slots, slotName(slot))
		}
		out = append(out, d)
	}
	pretty.Fprintf(w, "%# v\n", out)
}

// slotName shows where a struct slot was declared, since same-named
// structs of different files display alike.
func slotName(t typesystem.Type) string {
	if con, ok := t.(typesystem.TCon); ok && con.Module != "" {
		return fmt.Sprintf("%s (%s)", con.Name, con.Module)
	}
	return t.String()
}
