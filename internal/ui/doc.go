// Package ui renders human-readable console output: command lifecycle
// messages for the console log format and colored change and drift listings.
//
// Styling goes through a lipgloss renderer bound to the destination writer, so
// output written to pipes and files degrades to plain text.
package ui
