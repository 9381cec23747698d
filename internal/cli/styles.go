// Package cli holds the styled console output shared by the commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#E0245E") // heart red
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	okColor      = lipgloss.Color("#00AA00")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(okColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Heartbeat 💓"))
	FprintKV(os.Stdout, "Version:", version)
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintSuccess prints a confirmation line
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render("✓ " + message))
}

// FprintKV writes one aligned key/value line
func FprintKV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-14s", key)), ValueStyle.Render(value))
}

// StyledHelpPrinter puts the styled title above kong's usual help text
func StyledHelpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	fmt.Fprintln(ctx.Stdout, TitleStyle.Render("Heartbeat 💓"))
	fmt.Fprintln(ctx.Stdout, KeyStyle.Italic(true).Render("Microphone-driven biofeedback meter"))
	fmt.Fprintln(ctx.Stdout)
	return kong.DefaultHelpPrinter(options, ctx)
}
