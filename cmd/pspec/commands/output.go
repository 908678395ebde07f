package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"martianoff/pspec/pserr"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
)

// printer writes diagnostics, colored when the output is a terminal or
// --color=always is given.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	switch colorMode {
	case "always":
		p.color = true
	case "auto":
		if f, ok := w.(*os.File); ok {
			fd := f.Fd()
			p.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
	return p
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// diagnostic prints file:line:col: [Kind] message.
func (p *printer) diagnostic(d *pserr.Diagnostic) {
	code := ansiRed
	if d.Severity() == pserr.SeverityInfo {
		code = ansiCyan
	}
	fmt.Fprintf(p.w, "%s: %s %s\n", p.paint(ansiBold, d.Span.String()), p.paint(code, "["+string(d.Kind)+"]"), d.Msg)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
