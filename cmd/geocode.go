package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/store"
	"github.com/sells-group/facility-atlas/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Backfill coordinates for facilities without a usable location",
	Long:  "Sends facilities lacking coordinates to the Census geocoder in batches, with Google as a per-address fallback when an API key is configured.",
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

		var pending []model.Facility
		for _, f := range facilities {
			if !f.HasCoordinates() && f.Address != "" {
				pending = append(pending, f)
			}
		}
		if len(pending) == 0 {
			zap.L().Info("no facilities need geocoding")
			return nil
		}

		opts := []geocode.Option{
			geocode.WithRateLimit(cfg.Geocode.RateLimitPerSec),
			geocode.WithDefaultState("MO"),
		}
		if cfg.Geocode.GoogleAPIKey != "" {
			opts = append(opts, geocode.WithGoogleAPIKey(cfg.Geocode.GoogleAPIKey))
		}
		client := geocode.NewClient(opts...)

		batchSize := cfg.Geocode.BatchSize
		if batchSize <= 0 {
			batchSize = 500
		}

		var matched, unmatched int
		for start := 0; start < len(pending); start += batchSize {
			end := min(start+batchSize, len(pending))
			batch := pending[start:end]

			addrs := make([]geocode.AddressInput, len(batch))
			for i, f := range batch {
				addrs[i] = geocode.AddressInput{
					ID:      f.ID,
					Street:  f.Address,
					City:    f.City,
					ZipCode: f.ZIP,
				}
			}

			results, err := client.BatchGeocode(ctx, addrs)
			if err != nil {
				return err
			}

			var updated []model.Facility
			for i, r := range results {
				if !r.Matched {
					unmatched++
					continue
				}
				f := batch[i]
				f.Latitude = r.Latitude
				f.Longitude = r.Longitude
				f.GeocodeQuality = r.Quality
				if r.CountyName != "" {
					f.County = r.CountyName
				}
				updated = append(updated, f)
				matched++
			}

			if _, err := st.UpsertFacilities(ctx, updated); err != nil {
				return err
			}
			zap.L().Info("geocode batch complete",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Int("matched", len(updated)),
			)
		}

		zap.L().Info("geocoding complete",
			zap.Int("pending", len(pending)),
			zap.Int("matched", matched),
			zap.Int("unmatched", unmatched),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
