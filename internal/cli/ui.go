package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("35")  // success
	colorCyan  = lipgloss.Color("36")  // values
	colorDim   = lipgloss.Color("240") // muted text
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleValue   = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// printSuccess writes a styled confirmation line, e.g. "✓ wrote requirements.txt".
func printSuccess(w io.Writer, verb, subject string) {
	fmt.Fprintf(w, "%s %s %s\n",
		styleSuccess.Render("✓"),
		styleDim.Render(verb),
		styleValue.Render(subject))
}
