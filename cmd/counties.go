package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/county"
	"github.com/sells-group/facility-atlas/internal/store"
)

var (
	countiesDownload bool
	countiesURL      string
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Assign facilities to counties from TIGER boundaries",
	Long:  "Loads TIGER/Line county polygons and rewrites each located facility's county by point-in-polygon lookup, replacing the inconsistent county labels the source files carry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shpPath := cfg.Sources.Counties
		if countiesDownload {
			tempDir, err := os.MkdirTemp("", "tiger-county-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tempDir) //nolint:errcheck

			shpPath, err = county.Download(ctx, countiesURL, tempDir)
			if err != nil {
				return err
			}
		}

		idx, err := county.Load(shpPath, county.MissouriFIPS)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		facilities, err := st.ListFacilities(ctx, store.FacilityFilter{})
		if err != nil {
			return err
		}

		assigned := idx.Assign(facilities)
		if _, err := st.UpsertFacilities(ctx, facilities); err != nil {
			return err
		}

		zap.L().Info("county assignment complete",
			zap.Int("counties", idx.Count()),
			zap.Int("facilities", len(facilities)),
			zap.Int("assigned", assigned),
		)
		return nil
	},
}

func init() {
	countiesCmd.Flags().BoolVar(&countiesDownload, "download", false, "download the TIGER county shapefile first")
	countiesCmd.Flags().StringVar(&countiesURL, "url", county.DefaultShapefileURL, "TIGER county ZIP URL")
	rootCmd.AddCommand(countiesCmd)
}
