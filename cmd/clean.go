package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/cleanse"
	"github.com/sells-group/facility-atlas/internal/store"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Apply coordinate corrections and specialty exclusions",
	Long:  "Applies the verified coordinate corrections for centroid-collapsed clinics, removes psychiatric and pediatric specialty facilities, and reports coordinate pairs still shared by multiple facilities.",
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

		corrected := cleanse.DefaultCorrections().Apply(facilities)
		kept, removed := cleanse.Exclude(facilities)

		zap.L().Info("cleaning complete",
			zap.Int("corrections_applied", corrected),
			zap.Int("specialty_excluded", len(removed)),
			zap.Int("remaining", len(kept)),
		)

		if !cleanDryRun {
			if _, err := st.UpsertFacilities(ctx, kept); err != nil {
				return err
			}
			ids := make([]string, len(removed))
			for i, f := range removed {
				ids[i] = f.ID
			}
			if _, err := st.DeleteFacilities(ctx, ids); err != nil {
				return err
			}
		}

		// Any coordinates still shared after corrections are worth a look.
		groups := cleanse.SharedCoordinates(kept)
		if len(groups) > 0 {
			zap.L().Warn("facilities still sharing exact coordinates", zap.Int("groups", len(groups)))
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(groups); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "report changes without writing them")
	rootCmd.AddCommand(cleanCmd)
}
