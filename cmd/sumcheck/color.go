package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiFaint  = "\x1b[2m"
)

// printer writes diagnostics, coloured when the mode and terminal allow.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, mode string) *printer {
	return &printer{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) diagnostic(d *diagnostics.DiagnosticError) {
	var sb strings.Builder
	if d.File != "" {
		sb.WriteString(p.paint(ansiBold, d.File+":"))
	}
	fmt.Fprintf(&sb, "%d:%d: ", d.Token.Line, d.Token.Column)
	if d.IsWarning() {
		sb.WriteString(p.paint(ansiYellow, "warning"))
	} else {
		sb.WriteString(p.paint(ansiRed, "error"))
	}
	fmt.Fprintf(&sb, " [%s] %s\n", d.Code, d.Message)
	for _, n := range d.Notes {
		sb.WriteString("\t")
		sb.WriteString(p.paint(ansiFaint, n))
		sb.WriteString("\n")
	}
	io.WriteString(p.w, sb.String())
}
