// Package cleanse applies the manual data-quality fixes that precede
// analysis: known coordinate corrections, specialty-facility exclusions, and
// duplicate-coordinate detection.
package cleanse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/model"
)

// correctionKey identifies a facility by the fields the source files agree
// on. Names and addresses are matched case-insensitively after trimming.
type correctionKey struct {
	Name    string
	Address string
	City    string
}

// Point is a corrected coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Corrections maps facilities to verified street-level coordinates.
type Corrections map[correctionKey]Point

// NewCorrections builds a correction table from (name, address, city, lat, lon)
// entries with normalized keys.
func NewCorrections() Corrections {
	return make(Corrections)
}

// Add registers a corrected coordinate for a facility.
func (c Corrections) Add(name, address, city string, lat, lon float64) {
	c[normalizeKey(name, address, city)] = Point{Lat: lat, Lon: lon}
}

// Apply rewrites the coordinates of every facility present in the table and
// returns the number of corrections applied. Facilities are modified in
// place.
func (c Corrections) Apply(facilities []model.Facility) int {
	applied := 0
	for i := range facilities {
		f := &facilities[i]
		p, ok := c[normalizeKey(f.Name, f.Address, f.City)]
		if !ok {
			continue
		}
		zap.L().Debug("cleanse: coordinate correction applied",
			zap.String("facility", f.Name),
			zap.String("city", f.City),
			zap.Float64("old_lat", f.Latitude),
			zap.Float64("old_lon", f.Longitude),
			zap.Float64("new_lat", p.Lat),
			zap.Float64("new_lon", p.Lon),
		)
		f.Latitude = p.Lat
		f.Longitude = p.Lon
		f.GeocodeQuality = "verified"
		applied++
	}
	return applied
}

func normalizeKey(name, address, city string) correctionKey {
	norm := func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
	return correctionKey{Name: norm(name), Address: norm(address), City: norm(city)}
}

// DefaultCorrections returns the verified street-level coordinates for RHCs
// that the batch geocoder collapsed onto a shared city centroid. These were
// resolved by hand against the actual street addresses.
func DefaultCorrections() Corrections {
	c := NewCorrections()

	// Steele
	c.Add("PEMISCOT COUNTY MEMORIAL HOSPITAL", "213 S WALNUT ST", "STEELE", 36.0838, -89.8293)
	c.Add("MCPHERSON MEDICAL & DIAGNOSTIC LLC", "216 W MAIN ST", "STEELE", 36.0841, -89.8298)

	// Caruthersville
	c.Add("PEMISCOT COUNTY MEMORIAL HOSPITAL", "106 W 12TH STREET", "CARUTHERSVILLE", 36.1915, -89.6550)
	c.Add("PEMISCOT COUNTY MEMORIAL HOSPITAL", "1502 WARD AVE", "CARUTHERSVILLE", 36.1935, -89.6575)
	c.Add("WT REGIONAL MEDICAL ASSOCIATES", "108 W 15TH ST", "CARUTHERSVILLE", 36.1895, -89.6545)

	// Kennett
	c.Add("SCHEIDLER RURAL HEALTH CLINIC, LLC", "301 SOUTH BYP", "KENNETT", 36.2340, -90.0560)
	c.Add("FCC MEDICAL CLINICS LLC", "900 STATE ROUTE VV", "KENNETT", 36.2385, -90.0485)
	c.Add("MCPHERSON MEDICAL & DIAGNOSTIC LLC", "304 TEACO RD", "KENNETT", 36.2365, -90.0515)

	// Hayti
	c.Add("PEMISCOT COUNTY MEMORIAL HOSPITAL", "946 E REED ST", "HAYTI", 36.2370, -89.7520)
	c.Add("PEMISCOT COUNTY MEMORIAL HOSPITAL", "907 E REED ST", "HAYTI", 36.2368, -89.7535)
	c.Add("MCPHERSON MEDICAL & DIAGNOSTIC LLC", "223 S 3RD ST", "HAYTI", 36.2355, -89.7555)

	// Portageville
	c.Add("LORNA A TURNAGE", "203 E 3RD ST", "PORTAGEVILLE", 36.4292, -89.7013)
	c.Add("MISSOURI DELTA MEDICAL CENTER", "204 E 3RD ST", "PORTAGEVILLE", 36.4294, -89.7011)

	// Malden
	c.Add("POPLAR BLUFF REGIONAL MEDICAL CENTER LLC", "806 N DOUGLASS ST", "MALDEN", 36.5590, -89.9665)
	c.Add("SOUTHEAST HEALTH CENTER OF STODDARD COUNTY LLC", "500 N DOUGLASS ST", "MALDEN", 36.5565, -89.9668)
	c.Add("MISSOURI DELTA MEDICAL CENTER", "412 W BROADWATER RD", "MALDEN", 36.5550, -89.9710)

	// New Madrid
	c.Add("MISSOURI DELTA MEDICAL CENTER", "615 MAIN ST", "NEW MADRID", 36.5748, -89.6781)
	c.Add("SOUTHEAST HEALTH CENTER OF STODDARD COUNTY LLC", "800 US HIGHWAY 61", "NEW MADRID", 36.5752, -89.6758)

	// Charleston
	c.Add("MISSOURI DELTA MEDICAL CENTER", "1403 E MARSHALL ST", "CHARLESTON", 36.9220, -89.3475)
	c.Add("SAINT FRANCIS MEDICAL CENTER", "112 W COMMERCIAL ST", "CHARLESTON", 36.9195, -89.3525)

	// Puxico
	c.Add("POPLAR BLUFF REGIONAL MEDICAL CENTER LLC", "130 E HARBIN AVE", "PUXICO", 36.9485, -90.1598)
	c.Add("WOODS MEDICAL CLINIC, LLC", "250 SOUTH HICKMAN", "PUXICO", 36.9475, -90.1605)

	// Mount Vernon
	c.Add("CHERYL G WILLIAMS DO PC", "1011 S EAST ST", "MOUNT VERNON", 37.1025, -93.8190)
	c.Add("COX-MONETT HOSPITAL INC", "10763 HIGHWAY 39", "MOUNT VERNON", 37.1050, -93.8175)

	// Salem
	c.Add("SALEM MEMORIAL HOSPITAL", "35629 HIGHWAY 72 BLDG 3", "SALEM", 37.6245, -91.5380)
	c.Add("MERCY CLINIC SPRINGFIELD COMMUNITIES", "404W ROLLA RD", "SALEM", 37.6205, -91.5365)
	c.Add("PHELPS COUNTY REGIONAL MEDICAL CENTER", "1415 W SCENIC RIVERS BLVD", "SALEM", 37.6165, -91.5410)

	// El Dorado Springs
	c.Add("MERCY CLINIC SPRINGFIELD COMMUNITIES", "309E HOSPITAL RD", "EL DORADO SPRINGS", 37.8775, -94.0215)
	c.Add("CEDAR COUNTY MEMORIAL HOSPITAL", "1317 S STATE HIGHWAY 32", "EL DORADO SPRINGS", 37.8735, -94.0235)
	c.Add("CITIZENS MEMORIAL HEALTHCARE", "322 E HOSPITAL RD", "EL DORADO SPRINGS", 37.8770, -94.0205)

	// Steelville
	c.Add("MERCY CLINIC SPRINGFIELD COMMUNITIES", "518 PINE", "STEELVILLE", 37.9630, -91.3550)
	c.Add("MISSOURI BAPTIST HOSPITAL OF SULLIVAN", "510 W MAIN ST", "STEELVILLE", 37.9635, -91.3545)

	// Saint James
	c.Add("MERCY CLINIC SPRINGFIELD COMMUNITIES", "107W ELDON ST", "SAINT JAMES", 37.9990, -91.6110)
	c.Add("PHELPS COUNTY REGIONAL MEDICAL CENTER", "1000 N JEFFERSON ST", "SAINT JAMES", 38.0025, -91.6105)

	// Cuba
	c.Add("MISSOURI BAPTIST HOSPITAL OF SULLIVAN", "102 OZARK DR", "CUBA", 38.0620, -91.4045)
	c.Add("MERCY CLINIC EAST COMMUNITIES", "301 THERESA STREET", "CUBA", 38.0615, -91.4035)

	// Rich Hill
	c.Add("NEVADA CITY HOSPITAL", "320 N 14TH ST", "RICH HILL", 38.0975, -94.3610)
	c.Add("BATES COUNTY MEMORIAL HOSPITAL", "225 N 14TH ST", "RICH HILL", 38.0960, -94.3612)

	// Bourbon
	c.Add("MISSOURI BAPTIST HOSPITAL OF SULLIVAN", "240 COLLEGE ST", "BOURBON", 38.1465, -91.2540)
	c.Add("MERCY CLINIC EAST COMMUNITIES", "125 NORTH OLD HIGHWAY 66", "BOURBON", 38.1460, -91.2530)

	// Montgomery City
	c.Add("HERMANN AREA HOSPITAL DISTRICT", "504 NORTH STURGEON STREET", "MONTGOMERY CITY", 38.9785, -91.5050)
	c.Add("HEALTHY CHOICE", "111 E FIRST STREET", "MONTGOMERY CITY", 38.9770, -91.5045)

	// Higginsville
	c.Add("MIDWEST DIVISION - LRHC LLC", "3401 PINE ST", "HIGGINSVILLE", 39.0765, -93.7170)
	c.Add("WESTERN MISSOURI MEDICAL CENTER", "1200 W 22ND ST", "HIGGINSVILLE", 39.0740, -93.7180)

	// Brunswick
	c.Add("JOHN FITZGIBBON MEMORIAL HOSPITAL INC.", "815 E BROADWAY ST", "BRUNSWICK", 39.4235, -93.1305)
	c.Add("JEFFERSON MEDICAL GROUP", "807 E BROADWAY ST", "BRUNSWICK", 39.4232, -93.1302)

	// Plattsburg
	c.Add("CAMERON REGIONAL MEDICAL CENTER INC", "214 N MAIN ST", "PLATTSBURG", 39.5650, -94.4620)
	c.Add("NEW LIBERTY HOSPITAL CORPORATION", "400 W CLAY AVE", "PLATTSBURG", 39.5645, -94.4640)

	// Eagleville
	c.Add("CAMERON REGIONAL MEDICAL CENTER INC", "12050 12TH ST", "EAGLEVILLE", 40.4695, -93.9870)
	c.Add("HARRISON COUNTY COMMUNITY HOSPITAL DISTRICT", "16027 LOCUST ST", "EAGLEVILLE", 40.4688, -93.9875)

	return c
}
