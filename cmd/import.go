package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/facility-atlas/internal/healthsys"
	"github.com/sells-group/facility-atlas/internal/ingest"
	"github.com/sells-group/facility-atlas/internal/model"
)

var (
	importHospitals string
	importRHCs      string
	importFQHCs     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import facility source files into the store",
	Long:  "Reads the state hospital export, the CMS RHC enrollment extract, and the HRSA health center export in parallel, normalizes them, and upserts the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		facilities, err := loadSources(ctx)
		if err != nil {
			return err
		}

		systems := healthsys.Assign(facilities)
		zap.L().Info("health systems assigned", zap.Int("systems", len(systems)))

		n, err := st.UpsertFacilities(ctx, facilities)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("facilities", n),
			zap.String("hospitals", sourcePath(importHospitals, cfg.Sources.Hospitals)),
			zap.String("rhcs", sourcePath(importRHCs, cfg.Sources.RHCs)),
			zap.String("fqhcs", sourcePath(importFQHCs, cfg.Sources.FQHCs)),
		)
		return nil
	},
}

// loadSources reads the three source files concurrently.
func loadSources(ctx context.Context) ([]model.Facility, error) {
	var mu sync.Mutex
	var facilities []model.Facility
	collect := func(fs []model.Facility) {
		mu.Lock()
		facilities = append(facilities, fs...)
		mu.Unlock()
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		fs, err := ingest.Hospitals(gCtx, sourcePath(importHospitals, cfg.Sources.Hospitals))
		if err != nil {
			return err
		}
		collect(fs)
		return nil
	})
	eg.Go(func() error {
		fs, err := ingest.RHCs(gCtx, sourcePath(importRHCs, cfg.Sources.RHCs))
		if err != nil {
			return err
		}
		collect(fs)
		return nil
	})
	eg.Go(func() error {
		fs, err := ingest.FQHCs(gCtx, sourcePath(importFQHCs, cfg.Sources.FQHCs))
		if err != nil {
			return err
		}
		collect(fs)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return facilities, nil
}

func sourcePath(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func init() {
	importCmd.Flags().StringVar(&importHospitals, "hospitals", "", "hospital export path (default from config)")
	importCmd.Flags().StringVar(&importRHCs, "rhcs", "", "RHC enrollment extract path (default from config)")
	importCmd.Flags().StringVar(&importFQHCs, "fqhcs", "", "FQHC export path (default from config)")
	rootCmd.AddCommand(importCmd)
}
