package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
)

// display-width cap per column
var tableHeader = []string{"FILE", "METHOD", "ID", "TITLE", "COMPANY", "LOCATION", "POSTED"}
var tableCaps = []int{24, 14, 12, 40, 24, 24, 10}

func tableRows(results []fileResult) [][]string {
	var rows [][]string
	for _, fr := range results {
		name := filepath.Base(fr.Path)
		if fr.Error != "" {
			rows = append(rows, []string{name, "-", "", "error: " + fr.Error, "", "", ""})
			continue
		}
		for _, r := range fr.Records {
			posted := ""
			if !r.PostedDate.IsZero() {
				posted = r.PostedDate.Format("2006-01-02")
			}
			method := string(r.ExtractionMethod)
			if method == "" {
				method = string(fr.Method)
			}
			rows = append(rows, []string{name, method, r.ExternalID, r.Title, r.Company, r.Location, posted})
		}
	}
	return rows
}

// writeTable prints aligned columns measured by display width, so CJK
// and emoji titles line up.
func writeTable(w io.Writer, results []fileResult) {
	rows := append([][]string{append([]string(nil), tableHeader...)}, tableRows(results)...)

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			cell = runewidth.Truncate(cell, tableCaps[i], "…")
			row[i] = cell
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}
