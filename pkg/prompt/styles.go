package prompt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-memora/pkg/wizard"
)

var (
	PrimaryColor = lipgloss.Color("#C2825C")
	SuccessColor = lipgloss.Color("#6A994E")
	ErrorColor   = lipgloss.Color("#BC4749")
	MutedColor   = lipgloss.Color("#8A817C")
)

// Styles groups the lipgloss styles used for progress and messages.
type Styles struct {
	Title   lipgloss.Style
	Active  lipgloss.Style
	Done    lipgloss.Style
	Pending lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the warm palette used by the CLI.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor),
		Done:    lipgloss.NewStyle().Foreground(SuccessColor),
		Pending: lipgloss.NewStyle().Foreground(MutedColor),
		Error:   lipgloss.NewStyle().Foreground(ErrorColor),
		Success: lipgloss.NewStyle().Bold(true).Foreground(SuccessColor),
		Muted:   lipgloss.NewStyle().Foreground(MutedColor),
	}
}

// PlainStyles renders without colour, for tests and dumb terminals.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Active: plain, Done: plain, Pending: plain, Error: plain, Success: plain, Muted: plain}
}

// Progress renders the step indicator: completed steps get a check, the
// current step is highlighted.
func (s Styles) Progress(states []wizard.StepState) string {
	parts := make([]string, 0, len(states))
	var current wizard.StepState
	for _, state := range states {
		label := itoa(state.Number) + " " + state.Title
		switch {
		case state.Current:
			current = state
			parts = append(parts, s.Active.Render("● "+label))
		case state.Visited:
			parts = append(parts, s.Done.Render("✓ "+label))
		default:
			parts = append(parts, s.Pending.Render("○ "+label))
		}
	}

	line := strings.Join(parts, s.Muted.Render("  ›  "))
	if current.Number == 0 {
		return line
	}
	heading := s.Title.Render("Step " + itoa(current.Number) + ": " + current.Title)
	if current.Description != "" {
		heading += " " + s.Muted.Render("("+current.Description+")")
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, heading)
}

// Problem renders a user-facing error line.
func (s Styles) Problem(msg string) string {
	return s.Error.Render("✗ " + msg)
}
