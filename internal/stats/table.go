package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// formatTable lays out headers and rows in columns sized to their widest
// cell, measured in terminal cells. Columns listed in rightAlign are padded
// on the left.
func formatTable(headers []string, rows [][]string, rightAlign map[int]bool) []string {
	all := rows
	if len(headers) > 0 {
		all = append([][]string{headers}, rows...)
	}

	var widths []int
	for _, row := range all {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	if len(widths) == 0 {
		return nil
	}

	lines := make([]string, 0, len(all))
	cells := make([]string, len(widths))
	for _, row := range all {
		for i, width := range widths {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if rightAlign[i] {
				cells[i] = runewidth.FillLeft(cell, width)
			} else {
				cells[i] = runewidth.FillRight(cell, width)
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

// truncate shortens value to at most width terminal cells.
func truncate(value string, width int) string {
	if width <= 0 || displayWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, ellipsis)
}
