// Package sheet reads organisation rows out of the downloaded spreadsheet.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ost-labs/orgmeta/internal/config"
	"ost-labs/orgmeta/internal/models"
)

// ReadRows loads the first sheet of the xlsx file at path and maps the
// configured columns into OrgRow values. The first row is the header.
func ReadRows(path string, cols config.Columns) ([]models.OrgRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no header row", path)
	}

	websiteIdx, typeIdx, locationIdx := -1, -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case cols.Website:
			websiteIdx = i
		case cols.Type:
			typeIdx = i
		case cols.Location:
			locationIdx = i
		}
	}
	if websiteIdx < 0 {
		return nil, fmt.Errorf("spreadsheet %s has no '%s' column", path, cols.Website)
	}

	var out []models.OrgRow
	for _, row := range rows[1:] {
		out = append(out, models.OrgRow{
			Website:        cell(row, websiteIdx),
			ManualType:     cell(row, typeIdx),
			ManualLocation: cell(row, locationIdx),
		})
	}
	return out, nil
}

// ValidWebsite reports whether a website value is one the pipeline
// processes: only https:// URLs reach the model.
func ValidWebsite(website string) bool {
	return strings.HasPrefix(website, "https://")
}

// Filter keeps only rows with a valid website.
func Filter(rows []models.OrgRow) []models.OrgRow {
	var out []models.OrgRow
	for _, row := range rows {
		if ValidWebsite(row.Website) {
			out = append(out, row)
		}
	}
	return out
}

// Rows can be ragged at the tail: trailing empty cells are dropped by the
// xlsx reader.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
