package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/property-zones/internal/zone"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <lat> <lon>",
	Short: "Print the zone for a single coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "parse lat %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "parse lon %q", args[1])
		}

		c := cfg.Zones.Classifier()
		if err := c.Validate(); err != nil {
			return err
		}

		label := zone.Unassigned
		if z, ok := c.Classify(lat, lon); ok {
			label = string(z)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), label)
		return err
	},
}

func init() {
	// Negative longitudes must not parse as flags.
	classifyCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(classifyCmd)
}
