// Package server implements a receiver simulator for development and
// testing.
//
// The simulator reproduces the HTTP control surface of Denon and
// Marantz network receivers closely enough that clients built against
// real hardware work against it unchanged: the AppCommand0300 settings
// endpoint, the device identification document, and an optional HTTPS
// listener mirroring the receivers' port 10443.
//
// # Endpoints
//
//   - POST /goform/AppCommand0300.xml: GetAudyssey and SetAudyssey
//     commands against an in-memory settings state
//   - GET /goform/Deviceinfo.xml: static identification document
//   - GET /ws/events: WebSocket feed broadcasting every handled command
//
// # Firmware Behavior
//
// The simulated state enforces what real firmware enforces:
//
//   - Writes are rejected for unknown parameter names and for codes
//     outside each parameter's range
//   - Reference level offset writes are rejected while Dynamic EQ is
//     off; the last configured offset code keeps being reported
//   - Successful writes answer <rx><cmd>OK</cmd></rx>; rejected ones
//     answer with a non-OK cmd text
//
// # Event Feed
//
// Monitoring clients connect to /ws/events and receive one JSON Event
// per handled command: the remote address, the command name, the
// parameters involved, and the outcome. A greeting event confirms the
// subscription. The feed is useful for watching what an automation
// layer is doing to the receiver in real time.
//
// # Usage Example
//
//	config := &server.Config{
//	    Host:      "",
//	    Port:      8080,
//	    TLSPort:   10443,
//	    ModelName: "AVR-X4500H",
//	    LogLevel:  "info",
//	}
//
//	srv, err := server.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles SIGINT and SIGTERM: listeners stop accepting, in
// flight requests drain, and monitor connections are closed.
//
// # Thread Safety
//
// Handlers run concurrently; the settings state is mutex guarded and
// the event hub serializes client management on its own goroutine.
package server
