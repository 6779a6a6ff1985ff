package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCheckins prints a night as a table, one mat per row
func writeCheckins(w io.Writer, checkins []*entities.Checkin) error {
	if outputJSON {
		return writeJSON(w, checkins)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MAT\tID\tGUEST\tFEATURES")
	for _, c := range checkins {
		guest := "-"
		if c.GuestID != nil {
			guest = *c.GuestID
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.MatNumber, c.ID, guest, c.Features)
	}
	return tw.Flush()
}
