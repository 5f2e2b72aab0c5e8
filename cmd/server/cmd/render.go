package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"nomora-backend/internal/chat"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderResponse formats a chatbot answer for the terminal
func renderResponse(resp chat.Response) string {
	parts := []string{}
	if resp.Title != "" {
		parts = append(parts, titleStyle.Render(resp.Title))
	}
	if resp.Text != "" {
		parts = append(parts, resp.Text)
	}
	if resp.Table != nil && len(resp.Table.Rows) > 0 {
		parts = append(parts, renderTable(resp.Table))
	}
	parts = append(parts, metaStyle.Render(fmt.Sprintf("category: %s, matched by: %s", resp.Category, resp.Stage)))
	return strings.Join(parts, "\n\n")
}

func renderTable(t *chat.Table) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = fmt.Sprint(row[col])
		}
		tbl.Row(cells...)
	}
	return tbl.Render()
}
