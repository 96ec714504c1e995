package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/theme"
)

// Layout manages the terminal layout: a title bar, a summary line, the
// content area and a status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	SummaryHeight   int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		SummaryHeight:   1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the content area.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.SummaryHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title bar with a right-aligned poll status.
func (l Layout) RenderHeader(title, pollStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.Render(pollStatus)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		fill(theme.HeaderStyle, l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(statusRendered)),
		statusRendered,
	)
}

// RenderSummary renders the stats line under the header.
func (l Layout) RenderSummary(text string) string {
	return theme.SummaryStyle.Width(l.Width).Render(text)
}

// RenderStatusBar renders the bottom bar. When errMsg is set it is shown
// instead of the key hints.
func (l Layout) RenderStatusBar(hints, errMsg string) string {
	style := theme.StatusBarStyle
	text := hints
	if errMsg != "" {
		style = theme.ErrorBarStyle
		text = errMsg
	}

	rendered := style.Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, fill(style, l.Width-lipgloss.Width(rendered)))
}

// RenderWithFrame stacks header, summary, content and status bar.
func (l Layout) RenderWithFrame(header, summary, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		summary,
		content,
		statusBar,
	)
}

// fill pads a bar to the full width with its background color.
func fill(style lipgloss.Style, width int) string {
	if width < 0 {
		width = 0
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
