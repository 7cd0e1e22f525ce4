// Package ui renders CLI output with lipgloss.
//
// [LinksTable] lists stored links for the links command with credentials masked, and [ResultsTable] summarizes a
// one-off sync pass. Colors come from a single [Palette]; lipgloss drops them automatically when output is not a
// terminal.
package ui
