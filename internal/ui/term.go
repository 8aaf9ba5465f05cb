package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/indico/internal/timetable"
)

// Color definitions for consistent styling across the UI.
var (
	// Entry kinds
	colorSession      = color.New(color.FgBlue, color.Bold)
	colorContribution = color.New(color.FgGreen)
	colorBreak        = color.New(color.FgYellow)

	// Conflicts and failures
	colorConflict = color.New(color.FgRed, color.Bold)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Applied swaps, new times
	colorOK = color.New(color.FgGreen, color.Bold)

	// Muted: ids, old times, secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 100
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// applyColorMode applies the ui.color setting. "auto" keeps the
// library's terminal detection.
func applyColorMode(mode string) {
	switch mode {
	case "never":
		DisableColor()
	case "always":
		EnableColor()
	}
}

// colorEnabled reports whether output is colored.
func colorEnabled() bool {
	return !color.NoColor
}

func formatKind(k timetable.Kind, s string) string {
	switch k {
	case timetable.KindSessionBlock:
		return colorSession.Sprint(s)
	case timetable.KindBreak:
		return colorBreak.Sprint(s)
	default:
		return colorContribution.Sprint(s)
	}
}

func formatConflict(s string) string {
	return colorConflict.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
