// Package viz renders recorded turbine runs in the terminal.
//
//   - [PlotChannels]: asciigraph plots of recorded channels
//   - [Live]: a Bubble Tea view stepping a [hostsim.Harness] in real time
//   - [Canvas]: braille dot canvas used to draw the rotor
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ / - - Steps per frame
//	?     - Show help overlay
//	Q     - Quit
package viz
