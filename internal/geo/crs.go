package geo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownEPSG is returned for EPSG codes missing from the registry.
var ErrUnknownEPSG = errors.New("unknown EPSG code")

// CRS identifies a coordinate reference system.
// The zero value means the CRS is unknown.
type CRS struct {
	Name  string
	Proj4 string
	WKT   string
	EPSG  int
}

// Known reports whether the CRS carries a usable definition.
func (c CRS) Known() bool {
	return c.EPSG != 0 || c.WKT != "" || c.Proj4 != ""
}

// Geographic reports whether coordinates are longitude/latitude degrees.
func (c CRS) Geographic() bool {
	if c.Proj4 != "" {
		return strings.Contains(c.Proj4, "+proj=longlat")
	}

	return strings.HasPrefix(strings.TrimSpace(c.WKT), "GEOGCS")
}

// Definition returns the Proj4 string, falling back to WKT.
func (c CRS) Definition() string {
	if c.Proj4 != "" {
		return c.Proj4
	}

	return c.WKT
}

// URN returns the OGC URN used in GeoJSON "crs" members, empty when no EPSG code is known.
func (c CRS) URN() string {
	if c.EPSG == 0 {
		return ""
	}

	return fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", c.EPSG)
}

func (c CRS) String() string {
	switch {
	case c.EPSG != 0:
		return fmt.Sprintf("EPSG:%d", c.EPSG)
	case c.Name != "":
		return c.Name
	case c.Known():
		return "custom"
	default:
		return "unknown"
	}
}

type datum struct {
	gcs      string // ESRI GEOGCS name
	name     string // ESRI DATUM name
	spheroid string
	proj4    string
	a        float64
	invF     float64
}

var (
	datumWGS84 = datum{
		gcs: "GCS_WGS_1984", name: "D_WGS_1984", spheroid: "WGS_1984",
		a: 6378137, invF: 298.257223563,
		proj4: "+datum=WGS84",
	}
	datumNAD83 = datum{
		gcs: "GCS_North_American_1983", name: "D_North_American_1983", spheroid: "GRS_1980",
		a: 6378137, invF: 298.257222101,
		proj4: "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0",
	}
	datumSIRGAS2000 = datum{
		gcs: "GCS_SIRGAS_2000", name: "D_SIRGAS_2000", spheroid: "GRS_1980",
		a: 6378137, invF: 298.257222101,
		proj4: "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0",
	}
	datumETRS89 = datum{
		gcs: "GCS_ETRS_1989", name: "D_ETRS_1989", spheroid: "GRS_1980",
		a: 6378137, invF: 298.257222101,
		proj4: "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0",
	}
	datumGDA94 = datum{
		gcs: "GCS_GDA_1994", name: "D_GDA_1994", spheroid: "GRS_1980",
		a: 6378137, invF: 298.257222101,
		proj4: "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0",
	}
	datumGDA2020 = datum{
		gcs: "GCS_GDA2020", name: "D_GDA2020", spheroid: "GRS_1980",
		a: 6378137, invF: 298.257222101,
		proj4: "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0",
	}
)

func (d datum) geogcsWKT() string {
	return fmt.Sprintf(`GEOGCS["%s",DATUM["%s",SPHEROID["%s",%s,%s]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
		d.gcs, d.name, d.spheroid, ftoa(d.a), ftoa(d.invF))
}

var (
	registry  = make(map[int]CRS)
	nameIndex = make(map[string]int)
)

func init() {
	geographic(4326, "WGS 84", datumWGS84)
	geographic(4269, "NAD83", datumNAD83)
	geographic(4674, "SIRGAS 2000", datumSIRGAS2000)
	geographic(4258, "ETRS89", datumETRS89)
	geographic(4283, "GDA94", datumGDA94)
	geographic(7844, "GDA2020", datumGDA2020)

	register(CRS{
		EPSG:  3857,
		Name:  "WGS 84 / Pseudo-Mercator",
		Proj4: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +no_defs",
		WKT: `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",` + datumWGS84.geogcsWKT() +
			`,PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],` +
			`PARAMETER["Central_Meridian",0.0],PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",0.0],UNIT["Meter",1.0]]`,
	}, "WGS_1984_Web_Mercator_Auxiliary_Sphere")

	for zone := 1; zone <= 60; zone++ {
		utm(32600+zone, zone, false, "WGS 84 / UTM zone %d%s", "WGS_1984_UTM_Zone_%d%s", datumWGS84)
		utm(32700+zone, zone, true, "WGS 84 / UTM zone %d%s", "WGS_1984_UTM_Zone_%d%s", datumWGS84)
	}
	for zone := 17; zone <= 22; zone++ {
		utm(31954+zone, zone, false, "SIRGAS 2000 / UTM zone %d%s", "SIRGAS_2000_UTM_Zone_%d%s", datumSIRGAS2000)
	}
	for zone := 17; zone <= 25; zone++ {
		utm(31960+zone, zone, true, "SIRGAS 2000 / UTM zone %d%s", "SIRGAS_2000_UTM_Zone_%d%s", datumSIRGAS2000)
	}
	for zone := 1; zone <= 23; zone++ {
		utm(26900+zone, zone, false, "NAD83 / UTM zone %d%s", "NAD_1983_UTM_Zone_%d%s", datumNAD83)
	}
	for zone := 28; zone <= 38; zone++ {
		utm(25800+zone, zone, false, "ETRS89 / UTM zone %d%s", "ETRS_1989_UTM_Zone_%d%s", datumETRS89)
	}
	for zone := 48; zone <= 58; zone++ {
		utm(28300+zone, zone, true, "GDA94 / MGA zone %d%.0s", "GDA_1994_MGA_Zone_%d%.0s", datumGDA94)
		utm(7800+zone, zone, true, "GDA2020 / MGA zone %d%.0s", "GDA2020_MGA_Zone_%d%.0s", datumGDA2020)
	}
}

func geographic(code int, name string, d datum) {
	register(CRS{
		EPSG:  code,
		Name:  name,
		Proj4: "+proj=longlat " + d.proj4 + " +no_defs",
		WKT:   d.geogcsWKT(),
	}, d.gcs)
}

func utm(code, zone int, south bool, nameFmt, esriFmt string, d datum) {
	hemi, northing, flag := "N", 0.0, ""
	if south {
		hemi, northing, flag = "S", 10000000.0, " +south"
	}
	esri := fmt.Sprintf(esriFmt, zone, hemi)
	meridian := float64(zone*6 - 183)

	register(CRS{
		EPSG:  code,
		Name:  fmt.Sprintf(nameFmt, zone, hemi),
		Proj4: fmt.Sprintf("+proj=utm +zone=%d%s %s +units=m +no_defs", zone, flag, d.proj4),
		WKT: fmt.Sprintf(`PROJCS["%s",%s,PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",500000.0],`+
			`PARAMETER["False_Northing",%s],PARAMETER["Central_Meridian",%s],PARAMETER["Scale_Factor",0.9996],`+
			`PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`,
			esri, d.geogcsWKT(), ftoa(northing), ftoa(meridian)),
	}, esri)
}

func register(c CRS, aliases ...string) {
	registry[c.EPSG] = c
	nameIndex[normalizeName(c.Name)] = c.EPSG
	for _, a := range aliases {
		nameIndex[normalizeName(a)] = c.EPSG
	}
}

// LookupEPSG resolves an EPSG code from the built-in registry.
func LookupEPSG(code int) (CRS, error) {
	c, ok := registry[code]
	if !ok {
		return CRS{}, fmt.Errorf("%w: %d", ErrUnknownEPSG, code)
	}

	return c, nil
}

// WGS84 returns EPSG:4326.
func WGS84() CRS {
	return registry[4326]
}

var (
	authorityRe = regexp.MustCompile(`AUTHORITY\[\s*"EPSG"\s*,\s*"?(\d+)"?\s*\]`)
	idRe        = regexp.MustCompile(`ID\[\s*"EPSG"\s*,\s*(\d+)\s*\]`)
	wktNameRe   = regexp.MustCompile(`^\s*(?:PROJCS|GEOGCS|PROJCRS|GEOGCRS|GEODCRS)\[\s*"([^"]+)"`)
	urnRe       = regexp.MustCompile(`(?i)epsg:(?:[0-9.]*:)?(\d+)\s*$`)
)

// ParsePrj resolves the content of a .prj sidecar.
// The outermost EPSG authority wins, then the CRS name is matched against the registry.
// Unresolved definitions are kept as raw WKT.
func ParsePrj(text string) CRS {
	text = strings.TrimSpace(text)
	if text == "" {
		return CRS{}
	}

	for _, re := range []*regexp.Regexp{authorityRe, idRe} {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		code, _ := strconv.Atoi(matches[len(matches)-1][1])
		if c, err := LookupEPSG(code); err == nil {
			return c
		}
	}

	name := ""
	if m := wktNameRe.FindStringSubmatch(text); m != nil {
		name = m[1]
		if code, ok := nameIndex[normalizeName(name)]; ok {
			return registry[code]
		}
	}

	return CRS{Name: name, WKT: text}
}

// ParseCRSName resolves names such as "EPSG:4326", "urn:ogc:def:crs:EPSG::32718"
// or "urn:ogc:def:crs:OGC:1.3:CRS84".
func ParseCRSName(name string) (CRS, error) {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToUpper(name), "CRS84") {
		return WGS84(), nil
	}
	if m := urnRe.FindStringSubmatch(name); m != nil {
		code, err := strconv.Atoi(m[1])
		if err != nil {
			return CRS{}, err
		}
		return LookupEPSG(code)
	}
	if code, ok := nameIndex[normalizeName(name)]; ok {
		return registry[code], nil
	}

	return CRS{}, fmt.Errorf("%w: %q", ErrUnknownEPSG, name)
}

func normalizeName(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}

func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
