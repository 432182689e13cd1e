package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is one frame of the occurrence board. Width is the terminal width;
// zero means unknown.
type AppData struct {
	Header        string
	Summary       string
	Board         string
	Detail        string
	StatusLine    string
	StatusIsError bool
	Footer        string
	Notification  string
	Width         int
}

const (
	minDetailWidth     = 24
	defaultDetailWidth = 44
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderApp lays the board out at its natural table width and gives the
// detail pane what is left. Below minDetailWidth the panes stack.
func RenderApp(data AppData) string {
	board := panelStyle.Render(data.Board)
	boardWidth := lipgloss.Width(board)
	frame := panelStyle.GetHorizontalFrameSize()

	var body string
	switch {
	case data.Width == 0:
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, panelStyle.Width(defaultDetailWidth).Render(data.Detail))
	case data.Width-boardWidth-frame >= minDetailWidth:
		detail := panelStyle.Width(data.Width - boardWidth - frame).Render(data.Detail)
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, detail)
	default:
		detail := panelStyle.Width(max(boardWidth-frame, minDetailWidth)).Render(data.Detail)
		body = lipgloss.JoinVertical(lipgloss.Left, board, detail)
	}

	header := headerStyle.Render(data.Header)
	if data.Summary != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, summaryStyle.Render(data.Summary))
	}
	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{header, body, status}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders md for an 80 column terminal.
func RenderMarkdown(md string) string {
	return RenderMarkdownWidth(md, 80)
}

// RenderMarkdownWidth word-wraps at width. On renderer failure the source is
// returned as is.
func RenderMarkdownWidth(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
