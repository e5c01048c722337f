package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "property-zones",
	Short: "Geocode property addresses and split them into metro zones",
	Long:  "Reads a CSV or XLSX of property addresses, geocodes them through a cached free-then-paid provider chain, assigns each to a north/south/east/west zone and writes per-zone outputs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
