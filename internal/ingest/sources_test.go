package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/facility-atlas/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStreamCSV_HeaderedRows(t *testing.T) {
	t.Parallel()
	in := strings.NewReader("a,b,c\n1,2,3\n4,5,6\n")
	rows, err := ReadCSV(context.Background(), in, CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0]["b"])
	assert.Equal(t, "6", rows[1]["c"])
}

func TestStreamCSV_TrimsAndAllowsRaggedRows(t *testing.T) {
	t.Parallel()
	in := strings.NewReader(" a , b \n 1 , 2 , extra\nonly\n")
	rows, err := ReadCSV(context.Background(), in, CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0]["a"])
	assert.Equal(t, "2", rows[0]["b"])
	assert.Equal(t, "only", rows[1]["a"])
	assert.Empty(t, rows[1]["b"])
}

func TestStreamCSV_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader("a\n1\n2\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestRowGet_ProbesAlternateNames(t *testing.T) {
	t.Parallel()
	row := Row{"Latitude": "36.1", "CITY": "STEELE", "empty": ""}
	assert.Equal(t, "36.1", row.Get("latitude", "Latitude"))
	assert.Equal(t, "STEELE", row.Get("City/Town", "CITY", "City"))
	assert.Empty(t, row.Get("empty", "missing"))
}

func TestHospitals_Normalization(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "hospitals.csv",
		"Facility Name,Hospital Type,City/Town,County/Parish,ZIP Code,latitude,longitude,geocode_quality\n"+
			"PEMISCOT COUNTY MEMORIAL HOSPITAL,Critical Access,HAYTI,PEMISCOT,63851-1234,36.2370,-89.7520,verified\n"+
			",Acute Care,NOWHERE,,,0,0,\n")

	fs, err := Hospitals(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, fs, 1) // nameless row skipped

	f := fs[0]
	assert.Equal(t, "hosp-0001", f.ID)
	assert.Equal(t, model.CategoryHospital, f.Category)
	assert.Equal(t, "Critical Access", f.Subtype)
	assert.Equal(t, "Hayti", f.City)
	assert.Equal(t, "Pemiscot", f.County)
	assert.Equal(t, "63851", f.ZIP)
	assert.InDelta(t, 36.2370, f.Latitude, 1e-9)
	assert.Equal(t, SourceHospitals, f.Source)
	assert.True(t, f.HasCoordinates())
}

func TestRHCs_NameFallbackAndIDs(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "rhcs.csv",
		"ENROLLMENT ID,NPI,ORGANIZATION NAME,DOING BUSINESS AS NAME,ADDRESS LINE 1,ADDRESS LINE 2,CITY,ZIP CODE,Latitude,Longitude\n"+
			"E1,1234567890,MISSOURI DELTA MEDICAL CENTER,,615 MAIN ST,,NEW MADRID,63869,36.5748,-89.6781\n"+
			"E2,,,SCHEIDLER RURAL HEALTH CLINIC,301 SOUTH BYP,SUITE B,KENNETT,63857,36.2340,-90.0560\n"+
			"E3,,,,,,,,,\n")

	fs, err := RHCs(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, fs, 2) // fully empty trailing row dropped

	assert.Equal(t, "rhc-1234567890", fs[0].ID)
	assert.Equal(t, "MISSOURI DELTA MEDICAL CENTER", fs[0].Name)
	assert.Equal(t, "New Madrid", fs[0].City)

	assert.Equal(t, "rhc-E2", fs[1].ID)
	assert.Equal(t, "SCHEIDLER RURAL HEALTH CLINIC", fs[1].Name)
	assert.Equal(t, "301 SOUTH BYP, SUITE B", fs[1].Address)
	assert.Equal(t, model.CategoryRHC, fs[1].Category)
}

func TestFQHCs_SiteNamePreferred(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "fqhcs.csv",
		"Organization_Name,Site_Name,Rural_Urban,City,ZIP,Latitude,Longitude\n"+
			"Jordan Valley Community Health Center,Jordan Valley - Republic,Rural,REPUBLIC,65738,37.1201,-93.4802\n"+
			"ACCESS Family Care,,Rural,NEOSHO,64850,36.8690,-94.3680\n")

	fs, err := FQHCs(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, fs, 2)

	assert.Equal(t, "Jordan Valley - Republic", fs[0].Name)
	assert.Equal(t, "ACCESS Family Care", fs[1].Name) // falls back to org name
	assert.Equal(t, "Republic", fs[0].City)
	assert.Equal(t, model.CategoryFQHC, fs[0].Category)
	assert.Equal(t, "Rural", fs[0].Subtype)
}

func TestReadByExt_Unsupported(t *testing.T) {
	t.Parallel()
	_, err := Hospitals(context.Background(), "hospitals.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source file type")
}

func TestNormalizeCity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Steele", normalizeCity("STEELE"))
	assert.Equal(t, "New Madrid", normalizeCity("  new madrid "))
	assert.Equal(t, "El Dorado Springs", normalizeCity("EL DORADO SPRINGS"))
	assert.Empty(t, normalizeCity(""))
}
