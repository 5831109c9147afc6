// Package ui renders query results for the terminal: RenderTable prints a
// static lipgloss table and Browser is an interactive bubbletea viewer over
// several results.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"rowexec/pkg/database"
)

// nullText is how database.FormatRecord renders a null field.
const nullText = "NULL"

// RenderTable renders res as a bordered table followed by its row-count
// message. A result without columns renders only the message.
func RenderTable(res database.QueryResult) string {
	if len(res.Columns) == 0 {
		return successStyle.Render("✓ " + res.Message)
	}

	headers := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		headers[i] = c
		if i < len(res.Types) && res.Types[i] != "" {
			headers[i] = fmt.Sprintf("%s %s", c, res.Types[i])
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(res.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			// Row 0 is the header; data rows start at 1.
			if row == 0 {
				return headerCellStyle
			}
			if r := row - 1; r < len(res.Rows) && col < len(res.Rows[r]) && res.Rows[r][col] == nullText {
				return nullCellStyle
			}
			return cellStyle
		})

	return t.Render() + "\n" + successStyle.Render("✓ "+res.Message)
}

// RenderError renders a failed statement.
func RenderError(err error) string {
	return errorStyle.Render("⚠ " + err.Error())
}

// RenderSection renders one titled result, its plan when non-empty, and
// either the table or the error.
func RenderSection(p Panel) string {
	var sections []string
	sections = append(sections, titleStyle.Render(p.Title))
	if p.Plan != "" {
		sections = append(sections, planStyle.Render(NewPlanHighlighter().Highlight(p.Plan)))
	}
	if p.Err != nil {
		sections = append(sections, RenderError(p.Err))
	} else {
		sections = append(sections, RenderTable(p.Result))
	}
	return strings.Join(sections, "\n")
}
