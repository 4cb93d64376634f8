// internal/render/terminal.go

// Package render draws classified register data on a terminal. Each mode
// has its own palette; the classification itself comes from classify.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/tamzrod/ec-probe/internal/classify"
)

type color struct {
	ansi string
	bold bool
}

type palette map[classify.Tag]color

var (
	watchPalette = palette{
		classify.ChangedNow:      {"3", false}, // yellow
		classify.ChangedInWindow: {"4", true},  // bold blue
		classify.AllOnes:         {"7", false}, // white
		classify.Nonzero:         {"7", true},  // bold white
		classify.AllZeros:        {"0", true},  // bold black
	}
	dumpPalette = palette{
		classify.AllZeros: {"0", true},
		classify.AllOnes:  {"2", true}, // bold green
		classify.Nonzero:  {"4", true},
	}
	monitorPalette = palette{
		classify.ChangedNow: {"4", true},
		classify.Unchanged:  {"7", true},
	}
	addrColor = color{"2", false} // green
)

// Terminal is a poller.Sink writing to one output.
type Terminal struct {
	out   *termenv.Output
	clear bool
}

type options struct {
	output []termenv.OutputOption
	clear  bool
}

// Option configures a Terminal.
type Option func(*options)

// WithProfile forces a color profile (termenv.Ascii disables colors).
func WithProfile(p termenv.Profile) Option {
	return func(o *options) { o.output = append(o.output, termenv.WithProfile(p)) }
}

// WithClear clears the screen before every monitor frame.
func WithClear(clear bool) Option {
	return func(o *options) { o.clear = clear }
}

// New returns a Terminal on w. The color profile is detected from w
// unless WithProfile is given.
func New(w io.Writer, opts ...Option) *Terminal {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return &Terminal{
		out:   termenv.NewOutput(w, o.output...),
		clear: o.clear,
	}
}

func (t *Terminal) style(c color, s string) string {
	st := t.out.String(s).Foreground(t.out.Color(c.ansi))
	if c.bold {
		st = st.Bold()
	}
	return st.String()
}

// Watch prints the register grid for one tick.
func (t *Terminal) Watch(_ int, g classify.Grid) error {
	return t.grid(g, watchPalette)
}

// Dump prints a single tagged snapshot.
func (t *Terminal) Dump(g classify.Grid) error {
	return t.grid(g, dumpPalette)
}

// Monitor prints one line per moving register with its trailing samples.
func (t *Terminal) Monitor(_ int, trends []classify.Trend) error {
	if t.clear {
		t.out.ClearScreen()
	}

	var b strings.Builder
	for _, tr := range trends {
		b.WriteString(t.style(addrColor, fmt.Sprintf("0x%02X:", tr.Addr)))
		for _, c := range tr.Samples {
			b.WriteString(" ")
			b.WriteString(t.style(monitorPalette[c.Tag], fmt.Sprintf("%02X", c.Value)))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

const rule = "---|------------------------------------------------\n"

func (t *Terminal) grid(g classify.Grid, p palette) error {
	var b strings.Builder
	b.WriteString(rule)
	b.WriteString("   |")
	for col := 0; col < 0x10; col++ {
		fmt.Fprintf(&b, " %02X", col)
	}
	b.WriteString("\n")
	b.WriteString(rule)

	for row := 0; row < len(g); row += 0x10 {
		fmt.Fprintf(&b, "%02X |", row)
		for col := 0; col < 0x10; col++ {
			c := g[row+col]
			b.WriteString(" ")
			b.WriteString(t.style(p[c.Tag], fmt.Sprintf("%02X", c.Value)))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}
