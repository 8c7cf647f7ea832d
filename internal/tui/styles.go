package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#2563EB")
	colorSecondary = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#F9FAFB")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(22)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Width(22)

	InvalidFieldStyle = lipgloss.NewStyle().
				Foreground(colorError)

	ValidFieldStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	ReadOnlyStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	OptionStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingRight(2)

	SelectedOptionStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				PaddingRight(2)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorPrimary).
			Padding(0, 2)

	FocusedButtonStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorSecondary).
				Bold(true).
				Padding(0, 2)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(lipgloss.Color("#374151")).
				Padding(0, 2)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(colorError).
				MarginTop(1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true).
			MarginTop(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)
