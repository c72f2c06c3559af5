// Package tui implements the interactive fan monitor behind "blauberg watch".
//
// The monitor polls a fan through its device profile at a fixed interval and
// shows each purpose (power, speed, humidity, preset, firmware) with bars for
// the percentage values. Keys toggle power, cycle presets and force a refresh.
//
// The model follows the Elm architecture used by Bubble Tea: Init starts the
// first poll, Update folds poll results and key presses into a new model,
// and View renders it. Fan I/O runs inside tea.Cmd functions, never in
// Update itself.
package tui
