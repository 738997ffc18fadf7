package monitor

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Hex equivalents of the ANSI 256 colors in styles.go.
const (
	colorPrimary = "#FF87D7" // ANSI 212
	colorCyan    = "#00D7FF" // ANSI 45
	colorMuted   = "#626262" // ANSI 241
	colorWhite   = "#EEEEEE" // ANSI 255
)

func ptrString(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

// buildGlamourStyle is the dark style with headings and emphasis in the
// monitor palette.
func buildGlamourStyle() ansi.StyleConfig {
	s := styles.DarkStyleConfig
	s.Document.Margin = uintPtr(0)
	s.Document.Color = ptrString(colorWhite)
	s.H1.StylePrimitive = ansi.StylePrimitive{
		Prefix:          " ",
		Suffix:          " ",
		Color:           ptrString(colorWhite),
		BackgroundColor: ptrString(colorPrimary),
		Bold:            ptrBool(true),
	}
	s.H2.StylePrimitive = ansi.StylePrimitive{Prefix: "## ", Color: ptrString(colorPrimary), Bold: ptrBool(true)}
	s.H3.StylePrimitive = ansi.StylePrimitive{Prefix: "### ", Color: ptrString(colorCyan), Bold: ptrBool(true)}
	s.Emph.Color = ptrString(colorMuted)
	return s
}

// getGlamourOptions returns renderer options for the monitor palette.
func getGlamourOptions(width int) []glamour.TermRendererOption {
	return []glamour.TermRendererOption{
		glamour.WithStyles(buildGlamourStyle()),
		glamour.WithWordWrap(width),
	}
}

// renderMarkdown renders text for a pane of the given width, falling back
// to the raw text on error.
func renderMarkdown(text string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(getGlamourOptions(width)...)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
