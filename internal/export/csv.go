package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sloppy/scanreport-console/internal/filters"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// ExportReportsCSV writes one row per report. Properties are flattened into a
// single "Label=value; ..." column using their pretty labels.
func ExportReportsCSV(reports []rest.ScanReport, format filters.Formatter, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, report := range reports {
		if err := writer.Write(csvRow(report, format)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvHeader() []string {
	return []string{
		filters.Property("id"),
		filters.Property("timestamp"),
		filters.Property("location"),
		filters.Property("applications"),
		"Label",
		"Status",
		"Type",
		"Date",
		"Properties",
	}
}

func csvRow(report rest.ScanReport, format filters.Formatter) []string {
	scanTime := ""
	if !report.Timestamp.IsZero() {
		scanTime = format.Timestamp(report.Timestamp.Time)
	}
	props := make([]string, 0, len(report.Properties))
	for _, p := range report.Properties {
		props = append(props, filters.PrettyProperty(p.Key)+"="+p.Value)
	}
	return []string{
		report.ID,
		scanTime,
		report.Location,
		report.Applications.String(),
		report.Label,
		report.Status,
		report.Type,
		report.Date,
		strings.Join(props, "; "),
	}
}
