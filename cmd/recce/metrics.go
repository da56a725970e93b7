package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/spatial"
)

// mapFile describes a location map. Scale may be given directly or derived
// from a calibration.
type mapFile struct {
	ImageWidth  float64          `yaml:"imageWidth"`
	ImageHeight float64          `yaml:"imageHeight"`
	Scale       float64          `yaml:"scale"`
	Calibration *calibration     `yaml:"calibration"`
	Objects     []spatial.Object `yaml:"objects"`
	WorkArea    spatial.WorkArea `yaml:"workArea"`
}

type calibration struct {
	A              spatial.Point `yaml:"a"`
	B              spatial.Point `yaml:"b"`
	DistanceMeters float64       `yaml:"distanceMeters"`
}

func newMetricsCmd() *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute the space usage of a location map",
		Example: `  recce metrics --file plan.yaml
  recce metrics -f plan.json -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadMetrics(file)
			if err != nil {
				return err
			}
			return writeMetrics(cmd.OutOrStdout(), m, output)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "map file (YAML or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadMetrics(path string) (spatial.Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spatial.Metrics{}, err
	}

	var f mapFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.UseJSONUnmarshaler()); err != nil {
		return spatial.Metrics{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if f.Calibration != nil {
		scale, err := spatial.Calibrate(f.Calibration.A, f.Calibration.B, f.Calibration.DistanceMeters)
		if err != nil {
			return spatial.Metrics{}, fmt.Errorf("calibration: %w", err)
		}
		f.Scale = scale
	}

	m := &mapping.Map{
		ImageWidth:  f.ImageWidth,
		ImageHeight: f.ImageHeight,
		Scale:       f.Scale,
		Objects:     f.Objects,
		WorkArea:    f.WorkArea,
	}
	metrics, err := m.Metrics()
	if errors.Is(err, mapping.ErrUncalibrated) {
		return spatial.Metrics{}, fmt.Errorf("%w: set scale or calibration in %s", err, path)
	}
	return metrics, err
}

func writeMetrics(w io.Writer, m spatial.Metrics, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Total area\t%.2f m²\n", m.TotalAreaM2)
		fmt.Fprintf(tw, "Occupied\t%.2f m²\n", m.OccupiedAreaM2)
		fmt.Fprintf(tw, "Free\t%.2f m²\n", m.FreeAreaM2)
		fmt.Fprintf(tw, "Objects\t%d inside / %d total\n", m.InsideObjects, m.TotalObjects)

		categories := make([]string, 0, len(m.ObjectsByCategory))
		for c := range m.ObjectsByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Fprintf(tw, "  %s\t%d\n", c, m.ObjectsByCategory[c])
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
