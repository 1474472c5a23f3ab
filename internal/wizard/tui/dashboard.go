package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/discovery"
	"github.com/muurk/avrkit/internal/receiver"
)

// applyCompleteMsg reports the result of an async apply-and-verify run
type applyCompleteMsg struct {
	steps    []audyssey.Step
	result   *audyssey.VerifyResult
	duration time.Duration
}

// settingRow indexes the four editable dashboard rows, top to bottom
type settingRow int

const (
	rowMultiEQ settingRow = iota
	rowDynamicEQ
	rowRefLevelOffset
	rowDynamicVolume
	rowCount
)

// dynamicEQChoices lists the switch labels in cycle order, matching the
// step labels the change plan emits
var dynamicEQChoices = []string{"Off", "On"}

// rowParam maps a dashboard row to its wire parameter name
func rowParam(row settingRow) string {
	switch row {
	case rowMultiEQ:
		return audyssey.ParamMultiEQ
	case rowDynamicEQ:
		return audyssey.ParamDynamicEQ
	case rowRefLevelOffset:
		return audyssey.ParamRefLevelOffset
	case rowDynamicVolume:
		return audyssey.ParamDynamicVolume
	}
	return ""
}

// rowOptions returns the labels a row cycles through
func rowOptions(row settingRow) []string {
	switch row {
	case rowMultiEQ:
		return audyssey.MultiEQOptions
	case rowDynamicEQ:
		return dynamicEQChoices
	case rowRefLevelOffset:
		return audyssey.RefLevelOffsetOptions
	case rowDynamicVolume:
		return audyssey.DynamicVolumeOptions
	}
	return nil
}

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Cycle    key.Binding
	Apply    key.Binding
	Undo     key.Binding
	Discover key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Cycle, k.Apply, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Cycle},
		{k.Apply, k.Undo, k.Discover, k.Help, k.Quit},
	}
}

// pendingAudyssey holds the labels being edited, one per row. An empty
// label means the receiver has not reported the setting yet and the row
// has not been touched.
type pendingAudyssey struct {
	MultiEQ        string
	DynamicEQ      string // "On" or "Off"
	RefLevelOffset string
	DynamicVolume  string
}

// get returns the pending label for a row
func (p pendingAudyssey) get(row settingRow) string {
	switch row {
	case rowMultiEQ:
		return p.MultiEQ
	case rowDynamicEQ:
		return p.DynamicEQ
	case rowRefLevelOffset:
		return p.RefLevelOffset
	case rowDynamicVolume:
		return p.DynamicVolume
	}
	return ""
}

// set stores the pending label for a row
func (p *pendingAudyssey) set(row settingRow, label string) {
	switch row {
	case rowMultiEQ:
		p.MultiEQ = label
	case rowDynamicEQ:
		p.DynamicEQ = label
	case rowRefLevelOffset:
		p.RefLevelOffset = label
	case rowDynamicVolume:
		p.DynamicVolume = label
	}
}

// DashboardModel represents the settings dashboard screen
type DashboardModel struct {
	// Receiver connection
	Receiver *discovery.Receiver
	Client   *receiver.Client

	// Settings state
	Settings *audyssey.Settings // Last reported receiver state
	Pending  pendingAudyssey    // User's in-progress edits

	// UI state
	Width  int
	Height int

	// Navigation
	Cursor          settingRow
	ShowingProgress bool // Progress modal visible (applying changes)
	ShowingHelp     bool // Help modal visible

	// Apply state
	Spinner        spinner.Model
	ProgressBar    progress.Model
	ApplyStartTime time.Time
	ApplySteps     []audyssey.Step

	// Change tracking
	HasUnsavedChanges bool
	LastSaved         time.Time
	SaveMessage       string // e.g., "✓ Saved 2 seconds ago"

	// Navigation results
	BackRequested bool

	// Help
	Help help.Model
	Keys dashboardKeyMap
}

// NewDashboardModel creates a dashboard editing the given settings baseline
func NewDashboardModel(rc *discovery.Receiver, client *receiver.Client, settings *audyssey.Settings) DashboardModel {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	// Initialize help
	h := help.New()

	// Initialize key bindings
	keys := dashboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l"),
			key.WithHelp("←/→", "change"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "esc"),
			key.WithHelp("u", "undo edits"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	m := DashboardModel{
		Receiver:      rc,
		Client:        client,
		Settings:      settings,
		Cursor:        rowMultiEQ,
		Spinner:       s,
		ProgressBar:   progressBar,
		BackRequested: false,
		Help:          h,
		Keys:          keys,
	}
	m.Pending = m.baselinePending()

	return m
}

// baselinePending builds the pending state from the last reported
// receiver settings
func (m DashboardModel) baselinePending() pendingAudyssey {
	var p pendingAudyssey
	for row := settingRow(0); row < rowCount; row++ {
		p.set(row, m.currentLabel(row))
	}
	return p
}

// currentLabel returns the last label the receiver reported for a row,
// or "" before the first successful read of that setting
func (m DashboardModel) currentLabel(row settingRow) string {
	switch row {
	case rowMultiEQ:
		if m.Settings.MultiEQ != nil {
			return *m.Settings.MultiEQ
		}
	case rowDynamicEQ:
		if m.Settings.DynamicEQ != nil {
			if *m.Settings.DynamicEQ {
				return "On"
			}
			return "Off"
		}
	case rowRefLevelOffset:
		if m.Settings.RefLevelOffset != nil {
			return *m.Settings.RefLevelOffset
		}
	case rowDynamicVolume:
		if m.Settings.DynamicVolume != nil {
			return *m.Settings.DynamicVolume
		}
	}
	return ""
}

// changed reports whether a row's pending label differs from the last
// reported receiver state
func (m DashboardModel) changed(row settingRow) bool {
	return m.Pending.get(row) != m.currentLabel(row)
}

// pendingChangeCount returns how many rows differ from the receiver state
func (m DashboardModel) pendingChangeCount() int {
	count := 0
	for row := settingRow(0); row < rowCount; row++ {
		if m.changed(row) {
			count++
		}
	}
	return count
}

// offsetLocked reports whether the reference level offset row is locked.
// The receiver ignores offset writes while Dynamic EQ is off, so the row
// only unlocks once the pending state turns it on.
func (m DashboardModel) offsetLocked() bool {
	return m.Pending.DynamicEQ != "On"
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle modals first (help, progress)
	if m.ShowingHelp {
		return m.updateHelpModal(msg)
	}
	if m.ShowingProgress {
		return m.updateProgressModal(msg)
	}

	return m.updateNormalMode(msg)
}

// updateNormalMode handles input when no modal is showing
func (m DashboardModel) updateNormalMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			m.Cursor--
			if m.Cursor < 0 {
				m.Cursor = rowCount - 1
			}

		case "down", "j":
			m.Cursor++
			if m.Cursor >= rowCount {
				m.Cursor = 0
			}

		case "left", "h":
			m = m.cycleRow(m.Cursor, -1)

		case "right", "l":
			m = m.cycleRow(m.Cursor, 1)

		case "a":
			return m.applyPending()

		case "u", "esc":
			// Drop all pending edits, back to the reported state
			m.Pending = m.baselinePending()

		case "d":
			// Back to discovery to pick another receiver
			m.BackRequested = true
			return m, nil

		case "?":
			m.ShowingHelp = true
		}
	}

	// Update change tracking
	m.updateChangeTracking()

	return m, nil
}

// cycleRow moves a row's pending label forward or backward through its
// allowed options
func (m DashboardModel) cycleRow(row settingRow, delta int) DashboardModel {
	if row == rowRefLevelOffset && m.offsetLocked() {
		// Locked row, nothing to cycle
		return m
	}

	options := rowOptions(row)
	idx := indexOf(options, m.Pending.get(row))
	if idx < 0 {
		// Unknown current value; start from whichever end we entered
		if delta >= 0 {
			idx = 0
		} else {
			idx = len(options) - 1
		}
	} else {
		idx = (idx + delta + len(options)) % len(options)
	}
	m.Pending.set(row, options[idx])

	// Turning Dynamic EQ off drops any pending offset change, since the
	// receiver would reject the write anyway
	if row == rowDynamicEQ && m.offsetLocked() {
		m.Pending.RefLevelOffset = m.currentLabel(rowRefLevelOffset)
	}

	m.updateChangeTracking()
	return m
}

// indexOf returns the position of label in options, or -1
func indexOf(options []string, label string) int {
	for i, o := range options {
		if o == label {
			return i
		}
	}
	return -1
}

// buildPlan collects the pending edits into an ordered change plan
func (m DashboardModel) buildPlan() *audyssey.Plan {
	plan := audyssey.NewPlan(m.Settings)

	if m.changed(rowDynamicEQ) {
		plan.SetDynamicEQ(m.Pending.DynamicEQ == "On")
	}
	if m.changed(rowRefLevelOffset) && !m.offsetLocked() {
		plan.SetRefLevelOffset(m.Pending.RefLevelOffset)
	}
	if m.changed(rowDynamicVolume) {
		plan.SetDynamicVolume(m.Pending.DynamicVolume)
	}
	if m.changed(rowMultiEQ) {
		plan.SetMultiEQ(m.Pending.MultiEQ)
	}

	return plan
}

// applyPending resolves the pending edits into steps and starts the
// apply-and-verify run behind the progress modal
func (m DashboardModel) applyPending() (tea.Model, tea.Cmd) {
	plan := m.buildPlan()
	if !plan.HasChanges() {
		return m, nil
	}

	steps, err := plan.Steps()
	if err != nil {
		// Validation failures skip the progress modal; the failure
		// screen explains them
		outcome := applyOutcome{
			result: &audyssey.VerifyResult{Success: false, Error: err},
		}
		return m, func() tea.Msg {
			return screenTransitionMsg{screen: ScreenFailure, data: outcome}
		}
	}

	m.ShowingProgress = true
	m.ApplyStartTime = time.Now()
	m.ApplySteps = steps

	return m, tea.Batch(m.Spinner.Tick, applySettingsCmd(m.Settings, steps))
}

// applySettingsCmd writes the steps to the receiver and verifies them
// with the default retry schedule
func applySettingsCmd(settings *audyssey.Settings, steps []audyssey.Step) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result := settings.ApplyAndVerify(steps, nil)
		return applyCompleteMsg{
			steps:    steps,
			result:   result,
			duration: time.Since(start),
		}
	}
}

// updateChangeTracking updates the HasUnsavedChanges flag and the save
// status message
func (m *DashboardModel) updateChangeTracking() {
	m.HasUnsavedChanges = m.pendingChangeCount() > 0

	// Update save message
	if !m.LastSaved.IsZero() {
		elapsed := time.Since(m.LastSaved)
		if elapsed < 60*time.Second {
			m.SaveMessage = fmt.Sprintf("✓ Saved %d seconds ago", int(elapsed.Seconds()))
		} else {
			m.SaveMessage = ""
		}
	}
}

// updateSaveStatus refreshes the save status message for display
func (m *DashboardModel) updateSaveStatus() {
	if !m.LastSaved.IsZero() {
		elapsed := time.Since(m.LastSaved)
		if elapsed < 60*time.Second {
			m.SaveMessage = fmt.Sprintf("✓ Saved %d seconds ago", int(elapsed.Seconds()))
		} else {
			m.SaveMessage = ""
		}
	}
}

// updateProgressModal handles messages while changes are being applied.
// Keyboard input is blocked until the run completes.
func (m DashboardModel) updateProgressModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Block all input during progress
		return m, nil

	case spinner.TickMsg:
		// Update spinner animation
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case applyCompleteMsg:
		m.ShowingProgress = false
		outcome := applyOutcome{steps: msg.steps, result: msg.result, duration: msg.duration}

		if msg.result != nil && msg.result.Success {
			m.HasUnsavedChanges = false
			m.LastSaved = time.Now()
			// The verify pass refreshed the settings, resync the edits
			m.Pending = m.baselinePending()
			return m, func() tea.Msg {
				return screenTransitionMsg{screen: ScreenSuccess, data: outcome}
			}
		}

		return m, func() tea.Msg {
			return screenTransitionMsg{screen: ScreenFailure, data: outcome}
		}
	}

	return m, nil
}

// updateHelpModal handles input when the help modal is visible
func (m DashboardModel) updateHelpModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case tea.KeyMsg:
		// Any key closes the help modal
		m.ShowingHelp = false
	}

	return m, nil
}

// IsBackRequested returns true if user wants to go back
func (m DashboardModel) IsBackRequested() bool {
	return m.BackRequested
}

// View renders the dashboard
func (m DashboardModel) View() string {
	// Handle modals first (help, progress)
	if m.ShowingHelp {
		modal := m.renderHelpModalContent()
		return RenderModal("", modal, m.Width, m.Height)
	}
	if m.ShowingProgress {
		modal := m.renderProgressModalContent()
		return RenderModal("", modal, m.Width, m.Height)
	}

	// Normal dashboard view
	return m.renderDashboard()
}

// renderDashboard renders the main dashboard view using RenderApplicationContainer
func (m DashboardModel) renderDashboard() string {
	// Update save status message (for "✓ Saved X seconds ago" display)
	m.updateSaveStatus()

	// Build the dashboard content
	content := m.renderDashboardContent()

	// Help text using bubbles/help
	helpText := m.Help.View(m.Keys)

	// Wrap with application container (full-screen layout with height)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderDashboardContent renders the main dashboard content (without container)
func (m DashboardModel) renderDashboardContent() string {
	// Receiver info line
	receiverInfo := fmt.Sprintf("Receiver: %s • %s",
		m.receiverName(),
		m.Client.BaseURL())

	receiverStyle := lipgloss.NewStyle().Foreground(TextColor)
	receiverLine := receiverStyle.Render(receiverInfo)

	// Status indicator (on separate line if present)
	var statusLine string
	if m.HasUnsavedChanges {
		statusStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		statusLine = statusStyle.Render("⚠ MODIFIED")
	} else if m.SaveMessage != "" {
		statusStyle := lipgloss.NewStyle().Foreground(SecondaryColor)
		statusLine = statusStyle.Render(m.SaveMessage)
	}

	// Divider - simple horizontal line
	divider := lipgloss.NewStyle().
		Foreground(BorderColor).
		Render(strings.Repeat("─", 60))

	// Compose with JoinVertical
	return lipgloss.JoinVertical(lipgloss.Left,
		receiverLine,
		statusLine,
		divider,
		"",
		m.renderAudysseySection(),
	)
}

// receiverName returns the best display name for the connected receiver
func (m DashboardModel) receiverName() string {
	if m.Receiver.Model != "" {
		return m.Receiver.Model
	}
	if m.Receiver.Name != "" {
		return m.Receiver.Name
	}
	return "Unknown Receiver"
}

// renderAudysseySection renders the settings rows with the apply hint
func (m DashboardModel) renderAudysseySection() string {
	// Section title - bold, colored
	titleStyle := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	parts := []string{titleStyle.Render("AUDYSSEY")}

	for row := settingRow(0); row < rowCount; row++ {
		parts = append(parts, m.renderSettingRow(row))
	}

	parts = append(parts, "", m.renderApplyHint())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSettingRow renders one setting as a selectable line
// Format: "→ Label                   ◂ Value ▸  ⚠" when selected
//
//	"  Label                   Value" when not selected
func (m DashboardModel) renderSettingRow(row settingRow) string {
	selected := m.Cursor == row
	locked := row == rowRefLevelOffset && m.offsetLocked()

	value := m.Pending.get(row)
	if locked {
		value = audyssey.NotApplicable
	} else if value == "" {
		value = "(unknown)"
	}

	// Cycle indicator on the selected row
	if selected && !locked {
		value = "◂ " + value + " ▸"
	}

	// Change indicator if modified
	if m.changed(row) && !locked {
		value += " ⚠"
	}

	if locked {
		value += "  (requires Dynamic EQ)"
	}

	// Build the line using lipgloss styles
	labelStyle := lipgloss.NewStyle().Width(24).Foreground(SubtleColor)
	valueStyle := lipgloss.NewStyle()

	if locked {
		valueStyle = valueStyle.Foreground(SubtleColor)
	} else if selected {
		labelStyle = labelStyle.Foreground(HighlightColor).Bold(true)
		valueStyle = valueStyle.Foreground(HighlightColor).Bold(true)
	}

	// Selection arrow
	arrow := "  "
	if selected {
		arrow = "→ "
	}

	// Compose line using lipgloss.JoinHorizontal
	return lipgloss.JoinHorizontal(lipgloss.Left,
		arrow,
		labelStyle.Render(audyssey.DisplayName(rowParam(row))),
		valueStyle.Render(value),
	)
}

// renderApplyHint renders the apply action line under the settings rows
func (m DashboardModel) renderApplyHint() string {
	count := m.pendingChangeCount()

	text := "[a] Apply changes"
	hintStyle := lipgloss.NewStyle().Foreground(SubtleColor)

	if count > 0 {
		changes := "change"
		if count != 1 {
			changes = "changes"
		}
		text = fmt.Sprintf("[a] Apply %d pending %s ⚠", count, changes)
		hintStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	}

	// Center the hint under the rows
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(60).
		Render(hintStyle.Render(text))
}

// renderProgressModalContent renders the progress modal shown while
// changes are applied and verified
func (m DashboardModel) renderProgressModalContent() string {
	// Title with spinner
	titleStyle := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	title := titleStyle.Render(fmt.Sprintf("%s APPLYING AUDYSSEY SETTINGS", m.Spinner.View()))

	// Calculate progress (0-100%)
	// Simple two-stage progress: 0-50% = writing, 50-100% = verifying
	elapsed := time.Since(m.ApplyStartTime)
	elapsedRounded := elapsed.Round(100 * time.Millisecond)

	// Estimate progress based on elapsed time (10 second total estimated,
	// matching the default verify schedule's worst case)
	baseProgress := min(int(elapsed.Seconds()*10), 50)
	if elapsed.Seconds() > 0.5 {
		// Writes done, verification reads underway
		verifyProgress := min(int((elapsed.Seconds()-0.5)*10), 50)
		baseProgress = 50 + verifyProgress
	}
	percentage := min(baseProgress, 100)
	progressFloat := float64(percentage) / 100.0

	// Use bubbles/progress component
	progressBar := m.ProgressBar.ViewAs(progressFloat)
	progressLine := lipgloss.JoinHorizontal(lipgloss.Left, progressBar, fmt.Sprintf("  %d%%", percentage))

	// The steps being written
	stepStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	var stepLines []string
	for _, st := range m.ApplySteps {
		stepLines = append(stepLines, stepStyle.Render(
			fmt.Sprintf("  %-24s→ %s", audyssey.DisplayName(st.Parameter), st.Label)))
	}
	steps := lipgloss.JoinVertical(lipgloss.Left, stepLines...)

	// Progress status
	successStyle := lipgloss.NewStyle().Foreground(SecondaryColor)
	var statusLines string
	if elapsed.Seconds() > 0.5 {
		statusLines = lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("✓ Changes written to receiver"),
			fmt.Sprintf("%s Verifying settings...", m.Spinner.View()),
		)
	} else {
		statusLines = fmt.Sprintf("%s Writing changes to receiver...", m.Spinner.View())
	}

	// Elapsed time
	timeStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	elapsedText := timeStyle.Render(fmt.Sprintf("Elapsed: %s", elapsedRounded))

	// Compose all content using lipgloss.JoinVertical
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		progressLine,
		"",
		steps,
		"",
		statusLines,
		"",
		elapsedText,
	)

	// Create modal box with Lipgloss
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(60) // Fixed comfortable width - centering handled by RenderModal

	return modalStyle.Render(content)
}

// renderHelpModalContent renders the help modal explaining the settings
func (m DashboardModel) renderHelpModalContent() string {
	// Title
	titleStyle := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)
	title := titleStyle.Render("AUDYSSEY SETTINGS HELP")

	// Subtitle style
	subtitleStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	multEQ := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("MultEQ:"),
		"  Room correction curve from the microphone calibration.",
		"  Reference applies the full correction, Flat skips the",
		"  high-frequency roll-off, L/R Bypass leaves the front",
		"  pair untouched, Off disables room correction.",
	)

	dynamicEQ := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Dynamic EQ:"),
		"  Keeps bass and surround levels perceptually balanced",
		"  when listening below reference volume.",
	)

	refOffset := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Reference Level Offset:"),
		"  Compensates for content mastered above cinema reference",
		"  (0dB films, +5dB to +15dB for TV and pop music).",
		"  Only adjustable while Dynamic EQ is on.",
	)

	dynamicVolume := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Dynamic Volume:"),
		"  Evens out jumps between quiet and loud passages.",
		"  Heavy compresses the most, Off disables leveling.",
	)

	// Instructions
	instructions := "Press any key to close this help screen"

	// Compose all content using lipgloss.JoinVertical
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		multEQ,
		"",
		dynamicEQ,
		"",
		refOffset,
		"",
		dynamicVolume,
		"",
		instructions,
	)

	// Create modal box with Lipgloss
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(70) // Fixed comfortable width - centering handled by RenderModal

	return modalStyle.Render(content)
}
