package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prompts the user with a yes/no question and returns true when the
// answer starts with "y". Defaults to no on empty input or read failure.
func Confirm(prompt string) bool {
	promptStyle := lipgloss.NewStyle().Foreground(TextColor)
	fmt.Print(promptStyle.Render(prompt + " [y/N]: "))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}

	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

// ConfirmDangerousOperation displays a warning box and prompts the user to type
// "I AGREE" to proceed with a dangerous operation. Returns true if the user
// confirmed, false otherwise.
func ConfirmDangerousOperation(title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	// Title with warning marker
	titleLine := WarningTitleStyle.Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title))
	lines = append(lines, "")
	lines = append(lines, titleLine)
	lines = append(lines, "")

	// Warning bullet points
	for _, warning := range warnings {
		bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	// Disclaimer in muted text, word-wrapped
	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer))
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")

	// Double border in orange/warning color
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(content)

	fmt.Println(box)
	fmt.Println()

	// Prompt for confirmation
	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	fmt.Print(promptStyle.Render("To proceed, type \"I AGREE\" and press Enter: "))

	// Read user input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}

	// Check if user typed "I AGREE"
	input = strings.TrimSpace(input)
	if input == "I AGREE" {
		fmt.Println()
		return true
	}

	// User did not agree
	fmt.Println()
	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	fmt.Println(cancelStyle.Render("  Operation cancelled."))
	fmt.Println()
	return false
}

// RoomCorrectionConfirmation is a pre-configured confirmation for writes that
// switch room correction off. The warnings argument carries the per-change
// lines produced by the settings layer.
func RoomCorrectionConfirmation(warnings []string) bool {
	return ConfirmDangerousOperation(
		"ROOM CORRECTION OVERRIDE",
		warnings,
		"Disabling MultEQ or Dynamic EQ bypasses the calibration stored on the "+
			"receiver. The measured calibration itself is not deleted and can be "+
			"re-enabled at any time from this tool or the receiver's own menu.",
	)
}
