package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sloppy/scanreport-console/internal/filters"
	"github.com/sloppy/scanreport-console/internal/listctl"
)

// ExportListText writes a readable table of the list window followed by a
// pagination footer.
func ExportListText(state listctl.State, format filters.Formatter, w io.Writer) error {
	if len(state.Items) == 0 {
		if _, err := fmt.Fprintln(w, "No scan reports match the current query."); err != nil {
			return err
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\tLabel\n",
		filters.Property("id"),
		filters.Property("timestamp"),
		filters.Property("location"),
		filters.Property("applications"),
	)
	for _, report := range state.Items {
		scanTime := ""
		if !report.Timestamp.IsZero() {
			scanTime = format.Timestamp(report.Timestamp.Time)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", report.ID, scanTime, report.Location, report.Applications.String(), report.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	q := state.Query
	_, err := fmt.Fprintf(w, "\nShowing %d-%d of %d\n", q.Offset+1, q.LastOffset+1, q.Total())
	return err
}
