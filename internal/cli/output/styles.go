package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles used by text output.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Setup   lipgloss.Style
	Env     lipgloss.Style
	Current lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles bound to r, so colors follow r's color profile.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("14")),

		Setup:   r.NewStyle().Foreground(lipgloss.Color("13")),
		Env:     r.NewStyle().Foreground(lipgloss.Color("14")),
		Current: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
