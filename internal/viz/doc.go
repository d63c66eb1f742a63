// Package viz renders oscillator runs in the terminal.
//
// [Player] is a Bubble Tea model that animates a precomputed trajectory on
// a Braille [Canvas] next to live readouts and an energy chart. [Picker]
// is a preset menu that computes a trajectory on selection and hands it to
// a Player.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first sample
//	+/-   - Double or halve playback speed
//	[ ]   - Seek one simulated second
//	T     - Cycle colour themes
//	?     - Show help overlay
//	Esc   - Back to the menu (picker only)
package viz
