package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/facility-atlas/internal/model"
)

// Source names recorded on every facility.
const (
	SourceHospitals = "state_hospitals"
	SourceRHCs      = "cms_rhc_enrollment"
	SourceFQHCs     = "hrsa_fqhc"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// normalizeCity title-cases the free-text city labels the sources carry in
// wildly mixed casing ("STEELE", "steele", "Steele").
func normalizeCity(city string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(city)))
}

// parseCoord parses a coordinate field, returning 0 for empty or unparseable
// values. A (0,0) pair is the sources' failed-geocode sentinel; cleaning
// decides what to do with it.
func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Hospitals reads the state hospital export (CSV or XLSX by extension) and
// normalizes it to facilities.
func Hospitals(ctx context.Context, path string) ([]model.Facility, error) {
	rows, err := readByExt(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: hospitals %s", path)
	}

	out := make([]model.Facility, 0, len(rows))
	for i, row := range rows {
		f := model.Facility{
			ID:             fmt.Sprintf("hosp-%04d", i+1),
			Name:           row.Get("Facility Name", "FACILITY NAME", "Hospital Name"),
			Category:       model.CategoryHospital,
			Subtype:        row.Get("Hospital Type"),
			Latitude:       parseCoord(row.Get("latitude", "Latitude", "LATITUDE")),
			Longitude:      parseCoord(row.Get("longitude", "Longitude", "LONGITUDE")),
			Address:        row.Get("Address", "ADDRESS"),
			City:           normalizeCity(row.Get("City/Town", "CITY", "City")),
			County:         normalizeCity(row.Get("County/Parish", "County")),
			ZIP:            zip5(row.Get("ZIP Code", "ZIP CODE", "Zip")),
			Source:         SourceHospitals,
			GeocodeQuality: row.Get("geocode_quality"),
		}
		if f.Name == "" {
			zap.L().Warn("ingest: hospital row without a facility name, skipping", zap.Int("row", i+1))
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// RHCs reads the CMS Rural Health Clinic enrollment extract. Organization
// names fall back to DBA names; NPI is the preferred stable identifier.
func RHCs(ctx context.Context, path string) ([]model.Facility, error) {
	rows, err := readByExt(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: rhcs %s", path)
	}

	out := make([]model.Facility, 0, len(rows))
	for i, row := range rows {
		name := row.Get("ORGANIZATION NAME", "Clinic Name")
		if name == "" {
			name = row.Get("DOING BUSINESS AS NAME")
		}
		if name == "" {
			// Empty trailing rows are common in the CMS extract.
			continue
		}

		id := row.Get("NPI", "CCN", "ENROLLMENT ID")
		if id == "" {
			id = fmt.Sprintf("rhc-%04d", i+1)
		} else {
			id = "rhc-" + id
		}

		addr := row.Get("ADDRESS LINE 1", "Address")
		if l2 := row.Get("ADDRESS LINE 2"); l2 != "" {
			addr += ", " + l2
		}

		out = append(out, model.Facility{
			ID:        id,
			Name:      name,
			Category:  model.CategoryRHC,
			Subtype:   "Rural Health Clinic",
			Latitude:  parseCoord(row.Get("Latitude", "latitude")),
			Longitude: parseCoord(row.Get("Longitude", "longitude")),
			Address:   addr,
			City:      normalizeCity(row.Get("CITY", "City")),
			ZIP:       zip5(row.Get("ZIP CODE", "Zip")),
			Source:    SourceRHCs,
		})
	}
	return out, nil
}

// FQHCs reads the HRSA health center export.
func FQHCs(ctx context.Context, path string) ([]model.Facility, error) {
	rows, err := readByExt(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: fqhcs %s", path)
	}

	out := make([]model.Facility, 0, len(rows))
	for i, row := range rows {
		name := row.Get("Site_Name", "Organization_Name")
		if name == "" {
			continue
		}
		out = append(out, model.Facility{
			ID:        fmt.Sprintf("fqhc-%04d", i+1),
			Name:      name,
			Category:  model.CategoryFQHC,
			Subtype:   row.Get("Rural_Urban"),
			Latitude:  parseCoord(row.Get("Latitude", "latitude")),
			Longitude: parseCoord(row.Get("Longitude", "longitude")),
			Address:   row.Get("Address"),
			City:      normalizeCity(row.Get("City", "CITY")),
			ZIP:       zip5(row.Get("ZIP", "Zip")),
			Source:    SourceFQHCs,
		})
	}
	return out, nil
}

// readByExt opens a source file and parses it according to its extension.
func readByExt(ctx context.Context, path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: open csv")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(ctx, f, CSVOptions{LazyQuotes: true})
	default:
		return nil, eris.Errorf("ingest: unsupported source file type %q", filepath.Ext(path))
	}
}

// zip5 truncates ZIP+4 codes to the 5-digit prefix.
func zip5(z string) string {
	z = strings.TrimSpace(z)
	if len(z) > 5 {
		z = z[:5]
	}
	return z
}
