package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Tracer prints one line per cursor transition: the stack before, the emitted
// terminal (blank when the step only moved the cursor) and the stack after.
type Tracer struct {
	out     io.Writer
	profile termenv.Profile
}

// NewTracer writes to w. Colours are used only when w is a terminal.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{out: w, profile: detectProfile(w)}
}

// NewPlainTracer never colours its output.
func NewPlainTracer(w io.Writer) *Tracer {
	return &Tracer{out: w, profile: termenv.Ascii}
}

func detectProfile(w io.Writer) termenv.Profile {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Step prints one transition.
func (t *Tracer) Step(before string, sym domain.Symbol, emitted bool, after string) error {
	out := " "
	if emitted {
		out = t.symbol(sym)
	}
	dim := func(s string) termenv.Style {
		return t.profile.String(fmt.Sprintf("%-16s", s)).Faint()
	}
	_, err := fmt.Fprintf(t.out, "%s%s              %s\n", dim(before), out, dim(after))
	return err
}

func (t *Tracer) symbol(sym domain.Symbol) string {
	color := "#a3e635"
	switch sym {
	case '_':
		color = "#60a5fa"
	case '-':
		color = "#f472b6"
	case '?':
		color = "#facc15"
	}
	return t.profile.String(sym.String()).Foreground(t.profile.Color(color)).Bold().String()
}
