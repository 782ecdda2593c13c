package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alfredjeanlab/shelflog/internal/model"
	"github.com/alfredjeanlab/shelflog/internal/ui"
)

func printEventPageJSON(page *model.EventPage) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printEventTable(page *model.EventPage) {
	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT\tTIMESTAMP\tDATA")
	for _, e := range page.Events {
		data := string(e.EventData)
		if len(data) > 60 {
			data = data[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			ui.RenderEventName(e.EventName),
			ui.RenderTimestamp(e.Timestamp.Format("2006-01-02 15:04:05")),
			data,
		)
	}
	w.Flush()
	fmt.Printf("\n%d events (next lastIndex %d)\n", len(page.Events), page.LastIndex)
}
