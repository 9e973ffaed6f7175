package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	primary = lipgloss.Color("#8BC34A")
	info    = lipgloss.Color("#2196F3")
	muted   = lipgloss.Color("#7a8599")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")
)

// Styles holds the lipgloss styles of every screen
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Star     lipgloss.Style
	Card     lipgloss.Style
	Status   lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default palette
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Foreground(info),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(primary),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Star:     lipgloss.NewStyle().Foreground(warning),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(info).
			Padding(1, 4).
			Align(lipgloss.Center),
		Status: lipgloss.NewStyle().Foreground(danger),
		Help:   lipgloss.NewStyle().Foreground(muted),
	}
}

var (
	barStart, _ = colorful.Hex("#8BC34A")
	barEnd, _   = colorful.Hex("#2196F3")
)

// progressBar renders cur/total as a bar whose filled cells blend from green to blue
func progressBar(cur, total, width int) string {
	if width <= 0 || total <= 0 {
		return ""
	}
	filled := width * cur / total
	if filled > width {
		filled = width
	}

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i >= filled {
			sb.WriteString(lipgloss.NewStyle().Foreground(muted).Render("░"))
			continue
		}
		t := 0.0
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		c := barStart.BlendLab(barEnd, t).Clamped()
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("█"))
	}
	return sb.String()
}
