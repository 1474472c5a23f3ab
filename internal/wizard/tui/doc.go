// Package tui implements the terminal user interface for the avrkit settings wizard.
//
// This package provides an interactive, full-screen TUI for discovering receivers
// and editing their Audyssey settings. Built using the Bubble Tea framework, it
// follows the Elm architecture with immutable state updates and a clean
// Model-Update-View pattern.
//
// # Architecture
//
// The TUI is organized into three main screens:
//   - Discovery: Scan network for receivers or enter a host manually
//   - Dashboard: View and edit Audyssey settings
//   - Success/Failure: Display operation results
//
// All screens share a common container layout with header, content area, and a
// context-sensitive footer.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicators during scan and settings fetch
//   - bubbles/textinput: Manual host entry
//   - bubbles/progress: Progress bar during apply-and-verify
//   - bubbles/list: Discovered receiver list
//   - bubbles/help: Context-aware help system
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	// Create and run the wizard
//	app := tui.NewAppModel(tui.ScreenDiscovery, nil)
//	program := tea.NewProgram(app)
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
// The typical user flow through the wizard:
//
//  1. Discovery Screen:
//     - Automatically scans the network for receivers (mDNS/HEOS)
//     - Displays found receivers with model and address
//     - Allows manual host entry if the receiver is not found
//     - User selects a receiver to configure
//
//  2. Dashboard Screen:
//     - Fetches the current Audyssey settings from the receiver
//     - Shows the four settings (MultEQ, Dynamic EQ, Reference Level
//     Offset, Dynamic Volume) as selectable rows
//     - Left/right cycles a row through its allowed labels; the offset
//     row is locked while Dynamic EQ is off
//     - Pending changes are marked until applied or undone
//     - Apply writes the changes through a plan and verifies the receiver
//     accepted them, with a progress bar
//
//  3. Success/Failure Screen:
//     - Shows the operation result and the verified settings
//     - Shows mismatch details on failure
//     - Options to edit again, rediscover, or exit
//
// # Key Bindings
//
// Each screen has context-aware key bindings:
//   - Discovery: ↑/↓ navigate, Enter select, r rescan, m manual host, q quit
//   - Dashboard: ↑/↓ navigate rows, ←/→ cycle value, a apply, u undo, d discover, q quit
//   - Success/Failure: e edit again, d discover, q quit
//
// Help text automatically updates based on screen state (e.g., during scanning
// or manual entry).
//
// # State Management
//
// The TUI maintains immutable state with explicit updates:
//   - Models contain all state (no global variables)
//   - Update() returns new model + commands
//   - View() is a pure function of model state
//   - Commands represent async operations (scans, fetches, applies)
//
// Network operations run as Bubble Tea commands and report back as messages,
// so the receiver adapter is never accessed concurrently.
package tui
