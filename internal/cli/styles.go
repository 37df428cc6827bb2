package cli

import "github.com/charmbracelet/lipgloss"

// Terminal styles used by finanzasctl.
var (
	IncomeColor  = lipgloss.Color("#2E9E5B")
	ExpenseColor = lipgloss.Color("#D64545")
	SubtleColor  = lipgloss.Color("#777777")

	TitleStyle   = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(IncomeColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ExpenseColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	IncomeStyle  = lipgloss.NewStyle().Foreground(IncomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(ExpenseColor)
)
