package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/internal/config"
	"github.com/sells-group/property-zones/pkg/geocode"
)

var (
	runOutputDir     string
	runArea          string
	runXLSX          bool
	runGeoJSON       bool
	runShapefile     bool
	runRetryNegative bool
)

var runCmd = &cobra.Command{
	Use:   "run <input.csv|input.xlsx>",
	Short: "Geocode and zone a file of property addresses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cmd, cfg)

		var opts []geocode.ResolverOption
		if isatty.IsTerminal(os.Stderr.Fd()) {
			opts = append(opts, geocode.WithProgress(newProgress(os.Stderr)))
		}

		env, err := initPipeline(ctx, cfg, opts...)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.RunFile(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		for _, f := range result.Files {
			zap.L().Debug("wrote output", zap.String("path", f))
		}

		// Print stats JSON to stdout
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Stats)
	},
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		c.Output.Dir = runOutputDir
	}
	if flags.Changed("area") {
		c.Zones.Area = runArea
	}
	if flags.Changed("xlsx") {
		c.Output.XLSX = runXLSX
	}
	if flags.Changed("geojson") {
		c.Output.GeoJSON = runGeoJSON
	}
	if flags.Changed("shapefile") {
		c.Output.Shapefile = runShapefile
	}
	if flags.Changed("retry-negative") {
		c.Geocode.RetryNegative = runRetryNegative
	}
}

// newProgress returns a resolver callback that draws a bar on w. The bar is
// created on the first call, once the row count is known.
func newProgress(w io.Writer) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(w),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}

func init() {
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "output directory (default from config)")
	runCmd.Flags().StringVar(&runArea, "area", "", "area name used in output file names (default from config)")
	runCmd.Flags().BoolVar(&runXLSX, "xlsx", false, "also write zones.xlsx")
	runCmd.Flags().BoolVar(&runGeoJSON, "geojson", false, "also write zones.geojson")
	runCmd.Flags().BoolVar(&runShapefile, "shapefile", false, "also write a point shapefile")
	runCmd.Flags().BoolVar(&runRetryNegative, "retry-negative", false, "send previously failed addresses to the providers again")
	rootCmd.AddCommand(runCmd)
}
