package output

import "github.com/charmbracelet/lipgloss"

// Colors used across the CLI.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1F883D", Dark: "#3FB950"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	colorError   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
)

// Styles holds the lipgloss styles of a renderer.
type Styles struct {
	Header1   lipgloss.Style
	Header2   lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Success   lipgloss.Style
	ModelPath lipgloss.Style
	RuleID    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:   r.NewStyle().Bold(true).Foreground(colorPrimary).Underline(true),
		Header2:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(colorMuted),
		Error:     r.NewStyle().Foreground(colorError).Bold(true),
		Warning:   r.NewStyle().Foreground(colorWarning),
		Info:      r.NewStyle().Foreground(colorInfo),
		Success:   r.NewStyle().Foreground(colorSuccess),
		ModelPath: r.NewStyle().Bold(true).Foreground(colorInfo),
		RuleID:    r.NewStyle().Foreground(colorPrimary),

		StatusSuccess: r.NewStyle().Foreground(colorSuccess).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(colorError).SetString("✗"),
	}
}
