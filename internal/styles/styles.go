package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// iGAS brand palette
const (
	Background = "#3E3E3E"
	Foreground = "#FCFCFA"

	Amber  = "#F9B000" // Titles, emphasis
	Red    = "#F44336" // Errors
	Orange = "#FFC107" // Warnings
	Green  = "#4CAF50" // Success
	Cyan   = "#78DCE8" // Info

	Comment = "#8A8A8A" // Dim text, help
	Border  = "#5B595C" // Borders, separators
)

// Common styles
var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	InfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Amber))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Amber)).Bold(true)
	SpinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Amber))
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Amber)).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Foreground)).
			Padding(0, 1)
)

// Table renders rows under headers with the shared border and header style
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(Border))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})
	return t.Render()
}
