// Command recce computes itineraries and map metrics offline from YAML or
// JSON files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recce",
		Short:         "Offline tools for location recces",
		Long:          `Compute recce itineraries and location map metrics from YAML or JSON files without a running API.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newItineraryCmd(), newMetricsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
