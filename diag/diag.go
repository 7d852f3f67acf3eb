// Package diag prints colorized diagnostics for the CLI driver, the
// way go-mix/main/main.go's redColor/yellowColor/cyanColor do - one
// color.Color per message class, wrapped around a tty-aware writer so
// redirected output doesn't carry escape codes.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Printer writes colorized diagnostics to a pair of streams.
type Printer struct {
	out, err *color.Color
	outW     io.Writer
	errW     io.Writer
}

// New builds a Printer writing to stdout/stderr, wrapping both with
// go-colorable so ANSI sequences render correctly on Windows consoles
// too. Only stdout is checked for a real terminal (via go-isatty); when
// it is not one, color is turned off for both streams.
func New() *Printer {
	outW := colorable.NewColorable(os.Stdout)
	errW := colorable.NewColorable(os.Stderr)

	p := &Printer{
		out:  color.New(color.FgCyan),
		err:  color.New(color.FgRed),
		outW: outW,
		errW: errW,
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	return p
}

// Info writes a cyan-colored informational line to stdout.
func (p *Printer) Info(format string, args ...any) {
	p.out.Fprintf(p.outW, format+"\n", args...)
}

// Error writes a red-colored "error: " line to stderr.
func (p *Printer) Error(format string, args ...any) {
	p.err.Fprintf(p.errW, "error: "+format+"\n", args...)
}

// Trace writes a line unconditionally, uncolored - used for the
// instruction-trace dump, which is meant to be greppable/diffable
// rather than pretty.
func (p *Printer) Trace(line string) {
	fmt.Fprintln(p.outW, line)
}
