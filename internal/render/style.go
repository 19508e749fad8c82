// Package render draws a workflow subtree as a console tree or table.
// Status colours and the parallel/serial convention come from a Palette
// supplied by the caller.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gookit/color"

	"github.com/example/wfviz/internal/domain"
)

// Style is a space separated list of colour and format names,
// e.g. "bold green".
type Style string

var styleTokens = map[string]color.Color{
	"black":     color.FgBlack,
	"red":       color.FgRed,
	"green":     color.FgGreen,
	"yellow":    color.FgYellow,
	"blue":      color.FgBlue,
	"magenta":   color.FgMagenta,
	"purple":    color.FgMagenta,
	"cyan":      color.FgCyan,
	"white":     color.FgWhite,
	"grey":      color.FgDarkGray,
	"gray":      color.FgDarkGray,
	"lightred":  color.FgLightRed,
	"lightblue": color.FgLightBlue,

	"bold":      color.OpBold,
	"dim":       color.OpFuzzy,
	"italic":    color.OpItalic,
	"underline": color.OpUnderscore,
	"reverse":   color.OpReverse,
}

// Parse resolves the style names. An empty style is plain text.
func (s Style) Parse() (color.Style, error) {
	var out color.Style
	for _, tok := range strings.Fields(strings.ToLower(string(s))) {
		if tok == "standard" || tok == "plain" || tok == "none" {
			continue
		}
		c, ok := styleTokens[tok]
		if !ok {
			return nil, fmt.Errorf("%w: unknown style %q", domain.ErrInvalidArgument, tok)
		}
		out = append(out, c)
	}
	return out, nil
}

// Palette maps statuses and execution modes to styles.
type Palette struct {
	Statuses map[domain.Status]Style
	Parallel Style
	Serial   Style
}

// DefaultPalette mirrors the conventional colours: grey for unstarted,
// purple for pending, blue for running, green for completed and red for
// failed; parallel workflows in italics.
func DefaultPalette() Palette {
	return Palette{
		Statuses: map[domain.Status]Style{
			domain.StatusUnstarted: "grey",
			domain.StatusPending:   "purple",
			domain.StatusRunning:   "blue",
			domain.StatusCompleted: "green",
			domain.StatusFailed:    "red",
		},
		Parallel: "italic",
		Serial:   "standard",
	}
}

// Validate checks every style name and that each status has a style.
func (p Palette) Validate() error {
	for _, s := range domain.Statuses {
		style, ok := p.Statuses[s]
		if !ok {
			return fmt.Errorf("%w: no style for status %s", domain.ErrInvalidArgument, s)
		}
		if _, err := style.Parse(); err != nil {
			return err
		}
	}
	if _, err := p.Parallel.Parse(); err != nil {
		return err
	}
	_, err := p.Serial.Parse()
	return err
}

var forceColor sync.Once

// styler applies parsed styles, or nothing when colour is off.
type styler struct {
	palette Palette
	color   bool
}

// newStyler returns a styler. Asking for colour forces gookit's colour
// level on, since the output usually goes to a buffer rather than a tty.
func newStyler(palette Palette, useColor bool) styler {
	if useColor {
		forceColor.Do(func() { color.ForceColor() })
	}
	return styler{palette: palette, color: useColor}
}

func (s styler) apply(text string, styles ...Style) string {
	if !s.color {
		return text
	}
	var combined color.Style
	for _, st := range styles {
		parsed, err := st.Parse()
		if err != nil {
			continue
		}
		combined = append(combined, parsed...)
	}
	if len(combined) == 0 {
		return text
	}
	return color.RenderCode(combined.String(), text)
}

func (s styler) status(st domain.Status, text string) string {
	return s.apply(text, s.palette.Statuses[st])
}

// label styles a node name by status, and workflows by execution mode.
func (s styler) label(n *domain.Node) string {
	styles := []Style{s.palette.Statuses[n.Status]}
	if n.IsWorkflow() {
		if n.Parallel {
			styles = append(styles, s.palette.Parallel)
		} else {
			styles = append(styles, s.palette.Serial)
		}
	}
	return s.apply(n.Name, styles...)
}
