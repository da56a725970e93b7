package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/danisampedro/locationapp/internal/itinerary"
	"github.com/danisampedro/locationapp/internal/recce"
)

// itineraryFile is a recce body, in either the item-list or the legacy
// two-list layout, plus what the itinerary needs from the project.
type itineraryFile struct {
	MeetingPoint string            `json:"meetingPoint"`
	Locations    map[string]string `json:"locations"`
}

func newItineraryCmd() *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "itinerary",
		Short: "Compute the schedule of a recce",
		Example: `  recce itinerary --file recce.yaml
  recce itinerary -f recce.json -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := loadItinerary(file)
			if err != nil {
				return err
			}
			return writeItinerary(cmd.OutOrStdout(), rows, output)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "recce file (YAML or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadItinerary(path string) ([]itinerary.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// JSON is valid YAML, so one conversion covers both inputs.
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var f itineraryFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	content, err := recce.DecodeContent(raw)
	if err != nil {
		return nil, err
	}

	d := &recce.Document{Items: content.Items}
	d.Normalize()

	return itinerary.Compute(d.Legs(), itinerary.Names(f.Locations), f.MeetingPoint), nil
}

func writeItinerary(w io.Writer, rows []itinerary.Row, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FROM\tTO\tDEPART\tTRAVEL\tARRIVE\tON LOCATION")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.From, r.To, dash(r.DepartTime), r.TravelTime, dash(r.ArrivalTime), r.TimeOnLocation)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
