// Package viz is the live terminal view of a running simulation.
//
// A [Feed] is registered with the controller as observer and snapshot
// writer. It forwards throttled step updates and copies of every snapshot to
// a Bubble Tea program running a [Monitor], which draws the particles on a
// Braille [Canvas] next to the clock and per-phase diagnostics.
//
// # Key Bindings
//
//	Q, Ctrl+C - stop the run
package viz
