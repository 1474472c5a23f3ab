package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the context box printed at the start of each CLI command.
type Header struct {
	Title   string            // e.g., "AUDYSSEY SETTINGS"
	Command string            // e.g., "avrkit-cfg audyssey set"
	Params  map[string]string // e.g., {"Receiver": "192.168.1.34:8080", "Model": "AVR-X4500H"}
	Width   int               // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	commandLine := HeaderCommandStyle.Render(h.Command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	content := topSection
	if len(h.Params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := RenderHorizontalDivider(dividerWidth, "─")

		// Params in stable order so repeated runs render identically
		keys := make([]string, 0, len(h.Params))
		for key := range h.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		paramLines := make([]string, 0, len(keys))
		for _, key := range keys {
			keyStyled := HeaderParamKeyStyle.Render(key + ":")
			valueStyled := HeaderParamValueStyle.Render(h.Params[key])
			paramLines = append(paramLines, keyStyled+" "+valueStyled)
		}

		content = lipgloss.JoinVertical(lipgloss.Left, topSection, divider, strings.Join(paramLines, "\n"))
	}

	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
