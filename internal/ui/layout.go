package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/theme"
)

// Layout splits the terminal into a header bar, the active view, a notice
// line and a status bar, each of the bars one row high.
type Layout struct {
	Width  int
	Height int
}

// chromeRows is the number of rows taken by the header, notice and status bar.
const chromeRows = 3

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for the active view.
func (l Layout) ContentHeight() int {
	return max(l.Height-chromeRows, 0)
}

// Frame holds the parts of one screen.
type Frame struct {
	Title   string
	Due     int // unread watering notifications
	Status  string
	Content string
	Notice  string
	IsError bool
	Hints   string
}

// Render composes the full screen for f.
func (l Layout) Render(f Frame) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		l.header(f.Title, f.Due, f.Status),
		f.Content,
		l.notice(f.Notice, f.IsError),
		bar(theme.StatusBarStyle, l.Width, f.Hints, ""),
	)
}

func (l Layout) header(title string, due int, status string) string {
	if due > 0 {
		title = fmt.Sprintf("%s [%d to water]", title, due)
	}
	return bar(theme.HeaderStyle, l.Width, title, status)
}

// notice renders the flash line; an empty message keeps the row blank so
// the status bar does not jump.
func (l Layout) notice(msg string, isErr bool) string {
	style := theme.HelpStyle
	if isErr {
		style = theme.ErrorStyle
	}
	return style.Width(l.Width).Render(msg)
}

// bar renders left and right aligned text across width, padding the middle
// with the style's background.
func bar(style lipgloss.Style, width int, left, right string) string {
	l := style.Render(left)
	r := ""
	if right != "" {
		r = style.Render(right)
	}
	gap := max(width-lipgloss.Width(l)-lipgloss.Width(r), 0)
	pad := style.Padding(0).Width(gap).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, l, pad, r)
}
