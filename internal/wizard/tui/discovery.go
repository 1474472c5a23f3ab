package tui

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/avrkit/internal/discovery"
	"github.com/muurk/avrkit/internal/receiver"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	receivers []*discovery.Receiver
	err       error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Rescan  key.Binding
	Manual  key.Binding
	Quit    key.Binding
	Confirm key.Binding // For manual mode
	Cancel  key.Binding // For manual mode
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// receiverItem wraps a Receiver for use with bubbles/list
type receiverItem struct {
	receiver *discovery.Receiver
}

// Implement list.Item interface
func (r receiverItem) FilterValue() string {
	// Filter by name, model or IP
	return r.receiver.Name + " " + r.receiver.Model + " " + r.receiver.IP
}

// Title returns the receiver name for list display
func (r receiverItem) Title() string {
	if isManualEntry(r.receiver) {
		return fmt.Sprintf("Manual: %s", r.receiver.IP)
	}
	return r.receiver.Name
}

// Description returns receiver details for list display
func (r receiverItem) Description() string {
	model := r.receiver.Model
	if model == "" {
		model = "Unknown"
	}
	return fmt.Sprintf("%s • Model: %s • Ready", r.receiver.ControlAddress(), model)
}

// isManualEntry reports whether a receiver was typed in by hand rather
// than announced over mDNS. Hand-typed entries carry no model or MAC.
func isManualEntry(rc *discovery.Receiver) bool {
	return rc.Model == "" && rc.MAC == ""
}

// receiverDelegate is a custom list delegate for rendering receiver cards
type receiverDelegate struct {
	width int
}

func (d receiverDelegate) Height() int { return 8 } // Card height including borders

func (d receiverDelegate) Spacing() int { return 1 } // Spacing between cards

func (d receiverDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d receiverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	rcItem, ok := item.(receiverItem)
	if !ok {
		return
	}

	rc := rcItem.receiver
	selected := index == m.Index()

	// Build receiver name
	var name string
	if isManualEntry(rc) {
		name = fmt.Sprintf("Manual: %s", rc.IP)
	} else {
		name = rc.Name
	}

	model := rc.Model
	if model == "" {
		model = "Unknown"
	}

	mac := rc.MAC
	if mac == "" {
		mac = "Unknown"
	}

	// Build content lines
	var content strings.Builder

	// Add selection indicator to receiver name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	// Receiver details
	content.WriteString(fmt.Sprintf("  Model:    %s\n", model))
	content.WriteString(fmt.Sprintf("  Address:  %s\n", rc.ControlAddress()))
	content.WriteString(fmt.Sprintf("  MAC:      %s\n", mac))

	// Status with inline color styling (no border)
	statusStyle := lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	content.WriteString(fmt.Sprintf("  Status:   %s", statusStyle.Render("Ready")))

	// Create responsive card style
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the receiver discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning     bool
	ReceiverList list.Model
	Selected     bool
	Err          error

	// Manual address entry state
	ManualMode bool
	HostInput  textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize host input; accepts a bare address or host:port
	hostInput := textinput.New()
	hostInput.Placeholder = "192.168.1.40 or 192.168.1.40:8080"
	hostInput.CharLimit = 64
	hostInput.Width = 34

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	// Initialize receiver list with custom delegate
	delegate := receiverDelegate{width: MinTerminalWidth}
	receiverList := list.New([]list.Item{}, delegate, 0, 0)
	receiverList.Title = "Discovered Receivers"
	receiverList.SetShowStatusBar(false)
	receiverList.SetFilteringEnabled(true)
	receiverList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	// Initialize key bindings for normal mode
	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "configure"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for manual entry mode
	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	// Initialize key bindings for scanning mode
	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for empty results
	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		Scanning:     false,
		ReceiverList: receiverList,
		Selected:     false,
		ManualMode:   false,
		HostInput:    hostInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         h,
		Keys:         keys,
		ManualKeys:   manualKeys,
		ScanningKeys: scanningKeys,
		EmptyKeys:    emptyKeys,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	// Start scanning immediately - send start message then begin scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanReceivers,
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Update list size
		m.ReceiverList.SetWidth(msg.Width - 4)
		m.ReceiverList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		// Convert receivers to list items
		items := make([]list.Item, len(msg.receivers))
		for i, rc := range msg.receivers {
			items[i] = receiverItem{receiver: rc}
		}
		m.ReceiverList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Update list if not in manual mode or scanning
	if !m.ManualMode && !m.Scanning {
		m.ReceiverList, cmd = m.ReceiverList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal receiver list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter", " ":
		// Get selected receiver from list
		if selectedItem := m.ReceiverList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, nil
		}

	case "r":
		// Rescan
		m.ReceiverList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanReceivers,
			m.Spinner.Tick,
		)

	case "m":
		// Switch to manual address entry mode
		m.ManualMode = true
		m.HostInput.SetValue("")
		m.HostInput.Focus()
	}

	// Let the list handle up/down navigation
	return m, nil
}

// updateManualMode handles keyboard input in manual address entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		// Cancel manual entry
		m.ManualMode = false
		m.HostInput.SetValue("")
		m.HostInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.HostInput.Value())
		if value != "" {
			// Add to list
			newItem := receiverItem{receiver: manualReceiver(value)}
			items := append([]list.Item{newItem}, m.ReceiverList.Items()...)
			m.ReceiverList.SetItems(items)
			m.ReceiverList.Select(0) // Select the newly added item
			m.ManualMode = false
			m.HostInput.SetValue("")
			m.HostInput.Blur()
			return m, nil
		}
	}

	// Update the text input
	m.HostInput, cmd = m.HostInput.Update(msg)
	return m, cmd
}

// manualReceiver builds a receiver entry from a typed address. A port
// suffix overrides the default; without one, port 80 is assumed since
// the receivers that need manual entry are the ones without HEOS (HEOS
// models announce themselves and listen on 8080).
func manualReceiver(value string) *discovery.Receiver {
	host := value
	port := receiver.DefaultPort

	if h, p, err := net.SplitHostPort(value); err == nil {
		if n, perr := strconv.Atoi(p); perr == nil && n > 0 && n < 65536 {
			host = h
			port = n
		}
	}

	return &discovery.Receiver{
		Name:         host,
		IP:           host,
		Port:         port,
		DiscoveredAt: time.Now(),
	}
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	// Use default width if not set
	width := m.Width
	if width == 0 {
		width = 72
	}

	// Build main content area
	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanningEnhanced(width)
	} else {
		content = m.renderScanResults()
	}

	// Determine context-sensitive help text using bubbles/help
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.ReceiverList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	// Wrap with application container (full-screen layout with height)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanningEnhanced renders a prominent, centered scanning progress display
// Renders the discovery screen using Lipgloss placement for automatic centering
func (m DiscoveryModel) renderScanningEnhanced(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	elapsedSec := int(elapsed.Seconds())

	// Calculate progress (simulate - 10 second scan)
	progressPercent := min(100, (elapsedSec*100)/10)
	progressFloat := float64(progressPercent) / 100.0

	// Build content components
	title := fmt.Sprintf("%s SEARCHING FOR RECEIVERS", m.Spinner.View())
	subtitle := "Scanning your network for Denon and Marantz receivers..."

	// Use bubbles/progress component (ViewAs already includes percentage display)
	progressBar := m.ProgressBar.ViewAs(progressFloat)
	elapsedText := fmt.Sprintf("Elapsed: %ds", elapsedSec)

	// Use lipgloss.JoinVertical for layout composition
	content := lipgloss.JoinVertical(lipgloss.Center,
		"", // Top spacing
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		progressBar,
		"",
		SubtitleStyle.Render(elapsedText),
		"", // Bottom spacing
	)

	// Use lipgloss.Place for centering (not manual padding!)
	// Height = 0 means "no vertical constraint" - let content determine height
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderScanResults renders the receiver list or "no receivers found" message
func (m DiscoveryModel) renderScanResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		// Error state
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")

		// Troubleshooting hints
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the receiver is powered on (not in standby)\n")
		b.WriteString("    • The receiver and this computer must share a network\n")
		b.WriteString("    • Multicast/mDNS may be blocked by your router\n")
		b.WriteString("    • Use 'm' to enter the receiver's address by hand\n")

	} else if len(m.ReceiverList.Items()) == 0 {
		// No receivers found
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No receivers found on your network"))
		b.WriteString("\n\n")

		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the receiver is powered on (not in standby)\n")
		b.WriteString("    • The receiver and this computer must share a network\n")
		b.WriteString("    • Only HEOS-capable models announce themselves over mDNS\n")
		b.WriteString("    • Use 'm' to enter an older receiver's address by hand\n")
		b.WriteString("\n")

	} else {
		// Receivers found - render the list
		b.WriteString(m.ReceiverList.View())
	}

	return b.String()
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// renderManualEntry renders the manual address entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter receiver address"))
	b.WriteString("\n\n")

	// Input box using textinput component
	b.WriteString("  Address: ")
	b.WriteString(m.HostInput.View())
	b.WriteString("\n\n")

	b.WriteString(HelpStyle.Render("  Older receivers listen on port 80, HEOS models on 8080."))
	b.WriteString("\n")

	return b.String()
}

// GetSelectedReceiver returns the selected receiver (if any)
func (m DiscoveryModel) GetSelectedReceiver() *discovery.Receiver {
	if m.Selected {
		if selectedItem := m.ReceiverList.SelectedItem(); selectedItem != nil {
			if item, ok := selectedItem.(receiverItem); ok {
				return item.receiver
			}
		}
	}
	return nil
}

// scanReceivers is a command that performs receiver discovery
func scanReceivers() tea.Msg {
	scanner := discovery.NewScanner()
	scanner.Timeout = 10 * time.Second

	receivers, err := scanner.ScanForReceivers()
	return scanCompleteMsg{
		receivers: receivers,
		err:       err,
	}
}
