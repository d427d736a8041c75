package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "excel", "image", "html"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// FrameOf converts a plain table back into a string DataFrame
func FrameOf(table model.Table) dataframe.DataFrame {
	cols := make([]series.Series, len(table.Columns))
	for j, name := range table.Columns {
		values := make([]string, len(table.Rows))
		for i, row := range table.Rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		cols[j] = series.New(values, series.String, name)
	}
	return dataframe.New(cols...)
}

// ExportTableCSV writes a table as CSV with a header row
func ExportTableCSV(w io.Writer, table model.Table) (int, error) {
	df := FrameOf(table)
	if df.Err != nil {
		return 0, fmt.Errorf("failed to build table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return 0, fmt.Errorf("failed to write CSV: %w", err)
	}
	return df.Nrow(), nil
}

// ExportJSON writes v wrapped with export metadata
func ExportJSON(w io.Writer, runID, exportType string, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":      runID,
			"exported_at": time.Now().UTC(),
			"export_type": exportType,
		},
		"data": v,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
