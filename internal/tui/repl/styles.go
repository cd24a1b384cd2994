// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     repl
// Description: Styles for the REPL TUI
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package repl

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette - Same as other TUI components for consistency
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	// Background colors
	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800

	// Text colors
	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Logo/Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Transcript styles
var (
	EntryIndexStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	EntryTimestampStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)

	EntrySourceStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	EntryOutputStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusTimeoutStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)
)

// Panel/Box styles
var (
	TranscriptPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimmed).
				Padding(0, 1)

	EditorPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	ModeActiveStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ModeInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Title panel style
var (
	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)
)

// Logo
const Logo = "hivemind REPL"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}

// RenderStatusBadge renders the outcome badge of a transcript entry
func RenderStatusBadge(e Entry) string {
	switch {
	case e.Err != nil:
		return StatusErrorStyle.Render("[FEHLER]")
	case e.Timeouts > 0:
		return StatusTimeoutStyle.Render("[TIMEOUT]")
	case e.CheckOnly:
		return StatusOKStyle.Render("[GUELTIG]")
	default:
		return StatusOKStyle.Render("[OK]")
	}
}

// RenderMode renders a toggle indicator
func RenderMode(name string, active bool) string {
	if active {
		return ModeActiveStyle.Render(name)
	}
	return ModeInactiveStyle.Render(name)
}
