package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mapstyle/pkg/colors"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleKey = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints a labeled value. Keys are padded, not truncated, so
// long parameter names stay on one line.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(fmt.Sprintf("%-12s", key))+" "+StyleValue.Render(value))
}

// =============================================================================
// Colour Swatches
// =============================================================================

// swatch renders a two-cell block in the given colour. Transparent and
// unparsable colours render as a dimmed placeholder.
func swatch(c string) string {
	hex, err := colors.Normalize(c)
	if err != nil || hex == colors.None {
		return StyleDim.Render("··")
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// swatches renders the colours of params as a strip of blocks. A colormap
// name renders its anchors. It returns "" when params carry no colours.
func swatches(params style.Params) string {
	var list []string
	if name, ok := params.String("colors"); ok {
		if anchors, ok := colors.Colormap(name); ok {
			list = anchors
		} else {
			list = []string{name}
		}
	} else if cs, ok := params.Strings("colors"); ok {
		list = cs
	}
	if len(list) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range list {
		b.WriteString(swatch(c))
	}
	return b.String()
}

// printParams prints every parameter of a sub-style, one per line, with a
// colour strip after the colours.
func printParams(w io.Writer, params style.Params) {
	for _, k := range params.Keys() {
		value := style.FormatValue(params[k])
		if k == "colors" {
			if s := swatches(params); s != "" {
				value += " " + s
			}
		}
		printKeyValue(w, "  "+k, value)
	}
}
