// ABOUTME: Vote share bars for poll results
// ABOUTME: The leading option and the viewer's choice get their own colors

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// VoteBarConfig holds configuration for the vote bar
type VoteBarConfig struct {
	Width       int
	FillColor   lipgloss.Color
	LeaderColor lipgloss.Color
	EmptyColor  lipgloss.Color
}

// DefaultVoteBarConfig returns sensible defaults
func DefaultVoteBarConfig() VoteBarConfig {
	return VoteBarConfig{
		Width:       24,
		FillColor:   lipgloss.Color("#8B5CF6"), // Purple
		LeaderColor: lipgloss.Color("#10B981"), // Green
		EmptyColor:  lipgloss.Color("#374151"), // Dark gray
	}
}

// VoteBar renders a bar for percent, highlighted when the option leads
func VoteBar(percent float64, leader bool, config VoteBarConfig) string {
	if config.Width <= 0 {
		config.Width = 24
	}
	percent = max(0, min(percent, 100))

	filled := int(percent/100.0*float64(config.Width) + 0.5)
	filled = min(filled, config.Width)

	color := config.FillColor
	if leader {
		color = config.LeaderColor
	}

	var bar strings.Builder
	bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled)))
	return bar.String()
}

// VoteBarWithLabel renders the bar followed by percentage and count
func VoteBarWithLabel(percent float64, count int64, leader bool, config VoteBarConfig) string {
	label := fmt.Sprintf("%5.1f%% (%d)", percent, count)
	return VoteBar(percent, leader, config) + " " + lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Render(label)
}
