package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/cleanse"
	"github.com/sells-group/facility-atlas/internal/render"
	"github.com/sells-group/facility-atlas/internal/store"
)

var mapRadii []float64

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render the facility coverage map and GeoJSON export",
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
		located, _ := cleanse.DropUnlocated(facilities)

		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return err
		}

		opts := render.DefaultMapOptions()
		if len(mapRadii) > 0 {
			opts.RadiusMiles = mapRadii
		}

		mapPath := filepath.Join(cfg.Output.Dir, cfg.Output.MapFile)
		if err := render.WriteCoverageMap(mapPath, located, opts); err != nil {
			return err
		}

		geojsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.GeoJSON)
		if err := render.WriteGeoJSON(geojsonPath, render.FacilityCollection(located)); err != nil {
			return err
		}

		zap.L().Info("map artifacts written",
			zap.String("map", mapPath),
			zap.String("geojson", geojsonPath),
			zap.Int("facilities", len(located)),
		)
		return nil
	},
}

func init() {
	mapCmd.Flags().Float64SliceVar(&mapRadii, "radii", nil, "service radius circles in miles (default 10,20,30)")
	rootCmd.AddCommand(mapCmd)
}
