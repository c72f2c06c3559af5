package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/blauberg/internal/protocol"
)

// RenderTable draws rows under headers with a rounded border.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render()
}

// ParamRows turns parameters into id, hex and value columns. names adds an
// optional label column entry per id.
func ParamRows(params protocol.Params, names map[protocol.ParamID]string) [][]string {
	rows := make([][]string, 0, len(params))
	for _, id := range params.IDs() {
		v := params[id]
		value := v.String()
		raw := "-"
		if v.IsKnown() {
			raw = fmt.Sprintf("% X", v.Bytes())
		} else {
			value = "invalid"
		}
		rows = append(rows, []string{id.String(), names[id], value, raw})
	}
	return rows
}

// RenderParams draws a parameter table. Invalid values are highlighted.
func RenderParams(params protocol.Params, names map[protocol.ParamID]string) string {
	rows := ParamRows(params, names)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers("PARAM", "NAME", "VALUE", "RAW").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row >= 0 && row < len(rows) && col == 2 && rows[row][2] == "invalid":
				return InvalidValueStyle
			default:
				return TableCellStyle
			}
		})
	return t.Render()
}
