// Package audyssey reads and writes the Audyssey room correction
// settings of Denon and Marantz network receivers.
//
// The receiver exposes four parameters through the AppCommand0300
// endpoint: the MultEQ correction curve, Dynamic EQ, the reference
// level offset and Dynamic Volume. Settings mirrors them in memory:
// Update pulls the current values, the setters push changes and record
// the new value locally on acknowledgement without a re-read.
//
// On the wire every parameter is a small integer code; this package
// converts between codes and the labels the receiver's own on-screen
// menus use ("Reference", "+10dB", "Heavy"). Plan collects a batch of
// label-level changes and resolves them into ordered write steps, and
// RollbackManager snapshots settings so a batch that verifies badly can
// be undone.
//
// Receivers in standby do not answer; all operations treat that as a
// normal condition and report it as plain failure rather than an error.
package audyssey
