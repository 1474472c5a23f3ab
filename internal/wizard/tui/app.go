package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/discovery"
	"github.com/muurk/avrkit/internal/receiver"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
	ScreenSuccess   Screen = "success"
	ScreenFailure   Screen = "failure"
)

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
	data   interface{}
}

type goBackMsg struct{}
type quitMsg struct{}

// applyOutcome is the result of an apply-and-verify run, carried from the
// dashboard to the success/failure screens as transition data
type applyOutcome struct {
	steps    []audyssey.Step
	result   *audyssey.VerifyResult
	duration time.Duration
}

// successKeyMap defines key bindings for the success screen
type successKeyMap struct {
	View     key.Binding
	Edit     key.Binding
	Discover key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k successKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.View, k.Edit, k.Discover, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k successKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.View, k.Edit, k.Discover, k.Quit},
	}
}

// failureKeyMap defines key bindings for the failure screen
type failureKeyMap struct {
	Retry    key.Binding
	Discover key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k failureKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Discover, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k failureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Retry, k.Discover, k.Quit},
	}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	// Shared application state
	SelectedReceiver *discovery.Receiver
	Client           *receiver.Client
	Settings         *audyssey.Settings
	LastError        error

	// Result state from the last apply
	Outcome applyOutcome

	// UI state
	Width  int
	Height int

	// Help
	Help        help.Model
	SuccessKeys successKeyMap
	FailureKeys failureKeyMap
}

// NewAppModel creates a new application model starting at the specified screen.
// Pass a receiver to start directly on the dashboard, or nil to begin with
// network discovery.
func NewAppModel(startScreen Screen, rc *discovery.Receiver) AppModel {
	// Initialize help
	h := help.New()

	// Initialize key bindings for success screen
	successKeys := successKeyMap{
		View: key.NewBinding(
			key.WithKeys("enter", "v"),
			key.WithHelp("enter/v", "view"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for failure screen
	failureKeys := failureKeyMap{
		Retry: key.NewBinding(
			key.WithKeys("r", "e", "enter"),
			key.WithHelp("r", "back to settings"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	model := AppModel{
		CurrentScreen:    startScreen,
		PreviousScreen:   "",
		SelectedReceiver: rc,
		Help:             h,
		SuccessKeys:      successKeys,
		FailureKeys:      failureKeys,
	}

	// Initialize the starting screen
	switch startScreen {
	case ScreenDiscovery:
		model.DiscoveryModel = NewDiscoveryModel()
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenDashboard:
		// Starting on the dashboard still needs the initial settings read,
		// so route through the regular transition
		return func() tea.Msg { return screenTransitionMsg{screen: ScreenDashboard} }
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel.Width = msg.Width
		m.DiscoveryModel.Height = msg.Height
		m.DashboardModel.Width = msg.Width
		m.DashboardModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screenTransitionMsg:
		return m.transitionTo(msg.screen, msg.data)

	case goBackMsg:
		return m.goBack()

	case quitMsg:
		return m, tea.Quit
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if user selected a receiver
		if m.DiscoveryModel.Selected {
			m.SelectedReceiver = m.DiscoveryModel.GetSelectedReceiver()
			if m.SelectedReceiver != nil {
				return m.transitionTo(ScreenDashboard, nil)
			}
		}

		// Check for quit (normal mode only, not during scan)
		if !m.DiscoveryModel.Scanning && !m.DiscoveryModel.ManualMode {
			if keyMsg, ok := msg.(tea.KeyMsg); ok {
				if keyMsg.String() == "q" || keyMsg.String() == "esc" {
					return m, tea.Quit
				}
			}
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c

		// Check if user wants to go back
		if m.DashboardModel.IsBackRequested() {
			return m.goBack()
		}

	case ScreenSuccess:
		return m.handleSuccessScreen(msg)

	case ScreenFailure:
		return m.handleFailureScreen(msg)
	}

	return m, cmd
}

// handleSuccessScreen handles user input on the success screen
func (m AppModel) handleSuccessScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "v", "e":
			// View/edit settings - go back to the dashboard
			return m.transitionTo(ScreenDashboard, nil)

		case "d":
			// Discover another receiver
			return m.transitionTo(ScreenDiscovery, nil)

		case "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleFailureScreen handles user input on the failure screen
func (m AppModel) handleFailureScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "r", "e", "enter":
			// Back to the dashboard; the transition re-reads the receiver
			return m.transitionTo(ScreenDashboard, nil)

		case "d":
			return m.transitionTo(ScreenDiscovery, nil)

		case "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen, data interface{}) (tea.Model, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen

	var cmd tea.Cmd

	// Initialize the target screen with current state
	switch screen {
	case ScreenDiscovery:
		m.DiscoveryModel = NewDiscoveryModel()
		cmd = m.DiscoveryModel.Init()

	case ScreenDashboard:
		if m.SelectedReceiver != nil {
			// Read the current Audyssey settings first; the dashboard
			// edits against this baseline
			client := receiver.NewClient(m.SelectedReceiver.IP, m.SelectedReceiver.Port)
			settings := audyssey.NewSettings(client)
			if !settings.Update() {
				m.LastError = fmt.Errorf("could not read Audyssey settings from %s",
					m.SelectedReceiver.ControlAddress())
				m.CurrentScreen = m.PreviousScreen
				return m, nil
			}
			m.Client = client
			m.Settings = settings

			// Initialize dashboard with the fetched settings
			m.DashboardModel = NewDashboardModel(m.SelectedReceiver, client, settings)
			// Copy terminal dimensions to new dashboard model
			m.DashboardModel.Width = m.Width
			m.DashboardModel.Height = m.Height
			cmd = m.DashboardModel.Init()
		}

	case ScreenSuccess, ScreenFailure:
		// Result screens render from the carried outcome
		if outcome, ok := data.(applyOutcome); ok {
			m.Outcome = outcome
			if outcome.result != nil {
				m.LastError = outcome.result.Error
			}
		}
		cmd = nil
	}

	return m, cmd
}

// goBack returns to the previous screen
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		// Can't go back from discovery - quit instead
		return m, tea.Quit

	case ScreenDashboard:
		// Go back to discovery
		return m.transitionTo(ScreenDiscovery, nil)

	case ScreenSuccess, ScreenFailure:
		// Go back to dashboard
		return m.transitionTo(ScreenDashboard, nil)

	default:
		return m, tea.Quit
	}
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	case ScreenSuccess:
		return m.renderSuccessScreen()
	case ScreenFailure:
		return m.renderFailureScreen()
	default:
		return "Unknown screen"
	}
}

// renderSuccessScreen renders the success result screen
func (m AppModel) renderSuccessScreen() string {
	// Build content (without container)
	content := m.buildSuccessContent()

	// Help text using bubbles/help
	helpText := m.Help.View(m.SuccessKeys)

	// Wrap with unified container
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildSuccessContent builds the success screen content
func (m AppModel) buildSuccessContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✓ Audyssey Settings Applied!"))
	b.WriteString("\n\n")

	if m.Settings != nil {
		b.WriteString(SuccessBoxStyle.Render("Verified settings on the receiver:"))
		b.WriteString("\n\n")

		state := fmt.Sprintf("  MultEQ:                 %s\n", labelOrUnknown(m.Settings.MultiEQ))
		state += fmt.Sprintf("  Dynamic EQ:             %s\n", onOffOrUnknown(m.Settings.DynamicEQ))
		state += fmt.Sprintf("  Reference Level Offset: %s\n", labelOrUnknown(m.Settings.RefLevelOffset))
		state += fmt.Sprintf("  Dynamic Volume:         %s", labelOrUnknown(m.Settings.DynamicVolume))

		b.WriteString(state)
		b.WriteString("\n\n")
	}

	if m.Outcome.result != nil && m.Outcome.result.Success {
		reads := "read"
		if m.Outcome.result.Attempts != 1 {
			reads = "reads"
		}
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Verified in %.1f seconds (%d %s)",
			m.Outcome.duration.Seconds(), m.Outcome.result.Attempts, reads)))
		b.WriteString("\n\n")
	}

	b.WriteString("What would you like to do next?\n\n")

	b.WriteString(MenuItemStyle.Render("  Enter/v - View updated settings"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  e       - Make another change"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d       - Discover another receiver"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q       - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// renderFailureScreen renders the failure result screen
func (m AppModel) renderFailureScreen() string {
	// Build content (without container)
	content := m.buildFailureContent()

	// Help text using bubbles/help
	helpText := m.Help.View(m.FailureKeys)

	// Wrap with unified container
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildFailureContent builds the failure screen content
func (m AppModel) buildFailureContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✗ Audyssey Settings Update Failed"))
	b.WriteString("\n\n")

	if m.LastError != nil {
		errorBox := ErrorBoxStyle.Render(fmt.Sprintf("Error: %v", m.LastError))
		b.WriteString(errorBox)
		b.WriteString("\n\n")
	}

	if len(m.Outcome.steps) > 0 {
		b.WriteString("The following changes were attempted:\n\n")
		for _, st := range m.Outcome.steps {
			b.WriteString(fmt.Sprintf("  %-24s→ %s\n", audyssey.DisplayName(st.Parameter), st.Label))
		}
		b.WriteString("\n")
	}

	if m.Settings != nil {
		b.WriteString("Last reported receiver state:\n\n")

		state := fmt.Sprintf("  MultEQ:                 %s\n", labelOrUnknown(m.Settings.MultiEQ))
		state += fmt.Sprintf("  Dynamic EQ:             %s\n", onOffOrUnknown(m.Settings.DynamicEQ))
		state += fmt.Sprintf("  Reference Level Offset: %s\n", labelOrUnknown(m.Settings.RefLevelOffset))
		state += fmt.Sprintf("  Dynamic Volume:         %s", labelOrUnknown(m.Settings.DynamicVolume))

		b.WriteString(state)
		b.WriteString("\n\n")
	}

	// Troubleshooting hints
	b.WriteString("Troubleshooting:\n")
	b.WriteString("  • Check the receiver is powered on (network standby closes the control port on some models)\n")
	b.WriteString("  • Verify the receiver's IP address has not changed\n")
	b.WriteString("  • Receivers apply Audyssey changes asynchronously - a retry often succeeds\n\n")

	b.WriteString("What would you like to do?\n\n")

	b.WriteString(MenuItemStyle.Render("  r - Back to settings and retry"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d - Discover another receiver"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// labelOrUnknown formats an optional setting label for display
func labelOrUnknown(v *string) string {
	if v == nil {
		return "(unknown)"
	}
	return *v
}

// onOffOrUnknown formats an optional switch setting for display
func onOffOrUnknown(v *bool) string {
	if v == nil {
		return "(unknown)"
	}
	if *v {
		return "On"
	}
	return "Off"
}
