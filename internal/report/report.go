// Package report writes the classification outputs: a raw JSON dump and a
// CSV merging the model's answers with the manually curated columns.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"ost-labs/orgmeta/internal/models"
)

// Header of the CSV report, in column order.
var Header = []string{"url", "Confidence", "manual_Type", "Type", "manual_Location", "Location"}

// WriteJSON serializes the raw result list to path.
func WriteJSON(path string, results []models.Result) error {
	if results == nil {
		results = []models.Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a result list back from path. Writing and re-reading the
// file before tabulating guarantees the dump is valid JSON.
func ReadJSON(path string) ([]models.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var results []models.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return results, nil
}

// WriteCSV writes the six-column report: results left-joined with the
// manual annotations on url, sorted by Confidence descending. Rows without
// a Confidence (failed classifications) sort last. Every result appears
// even when no manual row matches its URL.
func WriteCSV(path string, results []models.Result, rows []models.OrgRow) error {
	manual := make(map[string]models.OrgRow, len(rows))
	for _, row := range rows {
		if _, seen := manual[row.Website]; !seen && row.Website != "" {
			manual[row.Website] = row
		}
	}

	sorted := make([]models.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, iok := sorted[i].Confidence()
		cj, jok := sorted[j].Confidence()
		if iok != jok {
			return iok
		}
		return ci > cj
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range sorted {
		row := manual[r.URL()]
		record := []string{
			r.URL(),
			formatCell(r["Confidence"]),
			row.ManualType,
			formatCell(r["Type"]),
			row.ManualLocation,
			formatCell(r["Location"]),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// formatCell renders a loosely typed result field for CSV output. Objects
// (e.g. a Location with Country and Continent) become compact JSON.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
