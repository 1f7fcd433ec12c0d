package main

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#F4A259")
	subtleColor = lipgloss.Color("#666666")
	errorColor  = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	markStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)
