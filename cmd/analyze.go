package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/cleanse"
	"github.com/sells-group/facility-atlas/internal/overlap"
	"github.com/sells-group/facility-atlas/internal/store"
)

var (
	analyzeRadius float64
	analyzeTopK   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the service-area redundancy analysis",
	Long:  "Computes pairwise distances between all stored facilities, counts service-area neighbors within the configured radius, ranks facilities by redundancy, forms consolidation clusters, and writes the full report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		facilities, err := st.ListFacilities(ctx, store.FacilityFilter{})
		if err != nil {
			return err
		}

		located, dropped := cleanse.DropUnlocated(facilities)
		if len(dropped) > 0 {
			zap.L().Warn("facilities without coordinates excluded from analysis",
				zap.Int("dropped", len(dropped)),
			)
		}

		ocfg := cfg.Analysis.Overlap()
		if analyzeRadius > 0 {
			ocfg.ServiceRadiusMiles = analyzeRadius
		}
		if analyzeTopK > 0 {
			ocfg.TopK = analyzeTopK
		}

		run, err := st.CreateRun(ctx, ocfg)
		if err != nil {
			return err
		}

		result, err := overlap.Analyze(located, ocfg)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("recording failed run", zap.Error(failErr))
			}
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, result); err != nil {
			return err
		}

		reportPath, err := writeReport(result)
		if err != nil {
			return err
		}

		printSummary(cmd, result, ocfg)
		zap.L().Info("analysis complete",
			zap.String("run_id", run.ID),
			zap.String("report", reportPath),
			zap.Int("facilities", result.Summary.TotalFacilities),
			zap.Float64("redundancy_score", result.Summary.RedundancyScore),
		)
		return nil
	},
}

func writeReport(result *overlap.Result) (string, error) {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Output.Dir, cfg.Output.ReportFile)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func printSummary(cmd *cobra.Command, result *overlap.Result, ocfg overlap.Config) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Facilities analyzed: %d\n", result.Summary.TotalFacilities)
	fmt.Fprintf(out, "Redundancy score:    %.2f overlaps per facility (%.0f-mile radius)\n",
		result.Summary.RedundancyScore, ocfg.ServiceRadiusMiles)
	fmt.Fprintf(out, "Isolated facilities: %d\n", result.Summary.IsolatedCount)

	if len(result.TopRedundant) > 0 {
		fmt.Fprintf(out, "\nMost redundant facilities:\n")
		for i, r := range result.TopRedundant {
			fmt.Fprintf(out, "  %2d. %-55s %-9s %-18s %3d neighbors\n",
				i+1, r.Name, r.Category, r.City, r.NeighborCount)
		}
	}

	if len(result.Clusters) > 0 {
		fmt.Fprintf(out, "\nConsolidation clusters (within %.0f miles):\n",
			ocfg.ServiceRadiusMiles*ocfg.ConsolidationRadiusFraction)
		for i, c := range result.Clusters {
			fmt.Fprintf(out, "  %2d. %s: %d facilities\n", i+1, c.DominantCity, len(c.MemberIDs))
		}
	}

	if result.Summary.EstimatedInefficiencyUSD > 0 {
		fmt.Fprintf(out, "\nEstimated annual inefficiency: $%.1fM\n",
			result.Summary.EstimatedInefficiencyUSD/1e6)
		fmt.Fprintf(out, "  (%s)\n", result.Summary.CostNote)
	}
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeRadius, "radius", 0, "service radius in miles (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeTopK, "top", 0, "number of top redundant facilities to report (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}
