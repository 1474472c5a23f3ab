// Package receiver provides the HTTP transport for talking to
// Denon/Marantz network receivers.
//
// The package deliberately knows nothing about the AppCommand XML
// dialect beyond endpoint paths: it moves request and response bodies
// and classifies transport failures into a typed error taxonomy. The
// settings adapters in other packages decide what the bytes mean and
// how failures surface to users.
//
// # Error Classification
//
// All errors returned by the client are *Error values with an ErrorType
// that callers can branch on:
//
//	data, err := client.SendPostCommand(appcommand.SettingsEndpoint, body)
//	if receiver.IsConnectTimeout(err) {
//	    // receiver likely in standby, try again later
//	}
//
// Connect timeouts (TCP handshake never completed) are distinguished
// from response timeouts because receivers with Network Control set to
// "Off" stop answering entirely in standby, and callers treat that as a
// transient condition rather than a fault.
//
// # Ports
//
// Current receivers answer on port 80; models released before 2016 use
// 8080 (LegacyPort). The Deviceinfo.xml endpoint is a cheap way to probe
// which port a receiver listens on.
package receiver
