package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
)

const columnWidth = 15

// RenderLog draws the attendance log as a two column table. Values are shown
// as they were read.
func RenderLog(log microstatus.AttendanceLog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Time In", "Time Out").
		Row(log.TimeIn, log.TimeOut).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Width(columnWidth)
			}
			return cellStyle.Width(columnWidth)
		})

	return t.Render()
}
