// Package srs resolves EPSG codes to ESRI-flavoured WKT definitions suitable
// for a shapefile .prj sidecar.
package srs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed crs/*.prj
var embeddedDefs embed.FS

// ErrUnknownCode is returned for EPSG codes with no known definition.
var ErrUnknownCode = errors.New("unknown EPSG code")

// SpatialRef is a resolved coordinate reference system.
type SpatialRef struct {
	EPSG int
	Name string
	WKT  string
}

func (s SpatialRef) String() string {
	return fmt.Sprintf("EPSG:%d (%s)", s.EPSG, s.Name)
}

const (
	wgs84GeogCS  = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	etrs89GeogCS = `GEOGCS["GCS_ETRS_1989",DATUM["D_ETRS_1989",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
)

// utmFamily describes a contiguous block of EPSG codes, one per UTM zone.
type utmFamily struct {
	first, last int
	firstZone   int
	prefix      string
	geogcs      string
	south       bool
}

var utmFamilies = []utmFamily{
	{first: 32601, last: 32660, firstZone: 1, prefix: "WGS_1984", geogcs: wgs84GeogCS},
	{first: 32701, last: 32760, firstZone: 1, prefix: "WGS_1984", geogcs: wgs84GeogCS, south: true},
	{first: 25828, last: 25838, firstZone: 28, prefix: "ETRS_1989", geogcs: etrs89GeogCS},
}

// Resolve returns the definition for an EPSG code.
func Resolve(code int) (SpatialRef, error) {
	if code <= 0 {
		return SpatialRef{}, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}

	data, err := embeddedDefs.ReadFile(path.Join("crs", strconv.Itoa(code)+".prj"))
	if err == nil {
		wkt := strings.TrimSpace(string(data))
		return SpatialRef{EPSG: code, Name: wktName(wkt), WKT: wkt}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return SpatialRef{}, fmt.Errorf("load EPSG:%d: %w", code, err)
	}

	for _, f := range utmFamilies {
		if code >= f.first && code <= f.last {
			wkt := f.wkt(f.firstZone + code - f.first)
			return SpatialRef{EPSG: code, Name: wktName(wkt), WKT: wkt}, nil
		}
	}

	return SpatialRef{}, fmt.Errorf("%w: %d", ErrUnknownCode, code)
}

func (f utmFamily) wkt(zone int) string {
	hemi, falseNorthing := "N", 0.0
	if f.south {
		hemi, falseNorthing = "S", 10000000.0
	}
	centralMeridian := float64(zone*6 - 183)
	return fmt.Sprintf(`PROJCS["%s_UTM_Zone_%d%s",%s,PROJECTION["Transverse_Mercator"],`+
		`PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",%.1f],`+
		`PARAMETER["Central_Meridian",%.1f],PARAMETER["Scale_Factor",0.9996],`+
		`PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`,
		f.prefix, zone, hemi, f.geogcs, falseNorthing, centralMeridian)
}

// Codes lists every EPSG code Resolve accepts, in ascending order.
func Codes() []int {
	var codes []int
	entries, _ := embeddedDefs.ReadDir("crs")
	for _, e := range entries {
		n, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ".prj"))
		if err == nil {
			codes = append(codes, n)
		}
	}
	for _, f := range utmFamilies {
		for c := f.first; c <= f.last; c++ {
			codes = append(codes, c)
		}
	}
	sort.Ints(codes)
	return codes
}

// wktName returns the first quoted token of a WKT definition.
func wktName(wkt string) string {
	start := strings.IndexByte(wkt, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(wkt[start+1:], '"')
	if end < 0 {
		return ""
	}
	return wkt[start+1 : start+1+end]
}
