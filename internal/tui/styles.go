package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
	barWidth         = 30
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red
	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
)

var (
	// TitleStyle is the monitor title
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	// SubtitleStyle is the fan address line
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// LabelStyle is for purpose names
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(12)

	// ValueStyle is for reported values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// MissingStyle is for values the fan did not report
	MissingStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// OnStyle and OffStyle render the power state
	OnStyle  = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	OffStyle = lipgloss.NewStyle().Foreground(SubtleColor).Bold(true)

	// StatusBarStyle is the line under the values
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginTop(1)

	// ErrorStyle is for poll and write failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// SpinnerStyle colors the poll spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// BoxStyle frames the monitor
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)
)
