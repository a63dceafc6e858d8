package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "facility-atlas",
	Short: "Healthcare facility service-area redundancy analysis",
	Long:  "Ingests hospital, RHC, and FQHC registries, measures service-area overlap between facilities, and reports redundancy rankings, consolidation clusters, and coverage maps.",
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
