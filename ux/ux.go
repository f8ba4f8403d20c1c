// Package ux styles the human-readable summaries printed by the tools.
package ux

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

var (
	ColorAccent  = lipgloss.Color("#20B9B4")
	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#6C7A89")
)

// Styles holds the styles shared by all report printers.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders styled text when its writer is a terminal and plain text
// otherwise.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// Styled reports whether output is decorated.
func (p *Printer) Styled() bool {
	return p.styled
}

// Render applies style only when the printer is styled.
func (p *Printer) Render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// Println writes s followed by a newline.
func (p *Printer) Println(s string) {
	io.WriteString(p.w, s+"\n")
}

// Title prints a title line.
func (p *Printer) Title(s string) {
	p.Println(p.Render(Styles.Title, s))
}

// Success prints a line marked as successful.
func (p *Printer) Success(s string) {
	p.Println(p.Render(Styles.Success, "✓ "+s))
}

// Warning prints a line marked as a warning.
func (p *Printer) Warning(s string) {
	p.Println(p.Render(Styles.Warning, "⚠ "+s))
}

// Error prints a line marked as an error.
func (p *Printer) Error(s string) {
	p.Println(p.Render(Styles.Error, "✗ "+s))
}

// Table renders rows under headers with a plain border.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
