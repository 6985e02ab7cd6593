// Package output renders command results for terminals and for machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeText  Mode = "text"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
	ModeTable Mode = "table"
)

// ColorMode selects when styling is applied.
type ColorMode string

// Color modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Renderer writes command output. Styling is applied only in text and
// table modes and only when the color mode allows it.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   Mode
	styles *Styles
}

// NewRenderer returns a renderer that detects whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode, color ColorMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode, color)
}

// NewRendererWithTTY returns a renderer with terminal detection overridden.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode, color ColorMode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	lr.SetColorProfile(profileFor(isTTY, color))
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
		styles: NewStyles(lr),
	}
}

func profileFor(isTTY bool, color ColorMode) termenv.Profile {
	switch color {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.ANSI256
	}
	if !isTTY || os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// EffectiveMode returns the mode in use. An empty or unknown mode is text.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeJSON, ModeYAML, ModeTable:
		return r.mode
	}
	return ModeText
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Styles returns the styles bound to this renderer's color profile.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Errorf writes formatted text to error output.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errOut, format, a...)
}

// Encode writes v as JSON or YAML depending on the mode. It is an error to
// call it in text or table mode.
func (r *Renderer) Encode(v any) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("mode %s has no encoding", r.EffectiveMode())
}

// IsStructured reports whether the mode is a machine-readable encoding.
func (r *Renderer) IsStructured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}
