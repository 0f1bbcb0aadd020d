package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupEPSG(t *testing.T) {
	for _, code := range []int{4326, 4269, 4674, 4283, 7844, 3857, 32601, 32660, 32718, 32756, 31983, 28356, 7856} {
		c, err := LookupEPSG(code)
		require.NoError(t, err, "EPSG:%d", code)
		assert.Equal(t, code, c.EPSG)
		assert.NotEmpty(t, c.Proj4)
		assert.NotEmpty(t, c.WKT)
		assert.True(t, c.Known())
	}

	_, err := LookupEPSG(999999)
	assert.ErrorIs(t, err, ErrUnknownEPSG)
}

func TestLookupEPSGRegionalUTM(t *testing.T) {
	cases := []struct {
		code  int
		name  string
		zone  string
		south bool
		datum string
	}{
		{26910, "NAD83 / UTM zone 10N", "+zone=10 ", false, "D_North_American_1983"},
		{25832, "ETRS89 / UTM zone 32N", "+zone=32 ", false, "D_ETRS_1989"},
		{31972, "SIRGAS 2000 / UTM zone 18N", "+zone=18 ", false, "D_SIRGAS_2000"},
		{31977, "SIRGAS 2000 / UTM zone 17S", "+zone=17 ", true, "D_SIRGAS_2000"},
	}
	for _, tc := range cases {
		c, err := LookupEPSG(tc.code)
		require.NoError(t, err, "EPSG:%d", tc.code)
		assert.Equal(t, tc.name, c.Name)
		assert.Contains(t, c.Proj4, tc.zone)
		assert.Equal(t, tc.south, strings.Contains(c.Proj4, "+south"))
		assert.Contains(t, c.WKT, tc.datum)

		byName, err := ParseCRSName(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.code, byName.EPSG)
	}

	etrs, err := LookupEPSG(4258)
	require.NoError(t, err)
	assert.True(t, etrs.Geographic())
}

func TestCRSGeographic(t *testing.T) {
	assert.True(t, WGS84().Geographic())

	utm, err := LookupEPSG(32718)
	require.NoError(t, err)
	assert.False(t, utm.Geographic())
	assert.Equal(t, "WGS 84 / UTM zone 18S", utm.Name)
	assert.Contains(t, utm.Proj4, "+south")

	assert.False(t, CRS{}.Known())
	assert.Equal(t, "unknown", CRS{}.String())
	assert.Equal(t, "EPSG:32718", utm.String())
	assert.Equal(t, "urn:ogc:def:crs:EPSG::32718", utm.URN())
	assert.Empty(t, CRS{}.URN())
}

func TestParsePrj(t *testing.T) {
	t.Run("authority", func(t *testing.T) {
		text := `PROJCS["WGS 84 / UTM zone 56S",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,` +
			`AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],AUTHORITY["EPSG","4326"]],PROJECTION["Transverse_Mercator"],` +
			`UNIT["metre",1],AUTHORITY["EPSG","32756"]]`
		assert.Equal(t, 32756, ParsePrj(text).EPSG)
	})

	t.Run("esri name", func(t *testing.T) {
		want, err := LookupEPSG(28356)
		require.NoError(t, err)
		assert.Equal(t, 28356, ParsePrj(want.WKT).EPSG)
	})

	t.Run("geographic", func(t *testing.T) {
		assert.Equal(t, 4326, ParsePrj(WGS84().WKT).EPSG)
	})

	t.Run("unresolved", func(t *testing.T) {
		text := `PROJCS["Local_Grid",GEOGCS["GCS_Local",DATUM["D_Local",SPHEROID["Local",6378137.0,298.257223563]]]]`
		c := ParsePrj(text)
		assert.Zero(t, c.EPSG)
		assert.Equal(t, "Local_Grid", c.Name)
		assert.Equal(t, text, c.WKT)
		assert.True(t, c.Known())
	})

	t.Run("empty", func(t *testing.T) {
		assert.False(t, ParsePrj("  \n").Known())
	})
}

func TestParseCRSName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"EPSG:4326", 4326},
		{"epsg:32718", 32718},
		{"urn:ogc:def:crs:EPSG::32718", 32718},
		{"urn:ogc:def:crs:EPSG:6.6:4283", 4283},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", 4326},
		{"WGS 84 / UTM zone 18S", 32718},
		{"GDA2020", 7844},
	}

	for _, tt := range tests {
		c, err := ParseCRSName(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, c.EPSG, tt.name)
	}

	_, err := ParseCRSName("urn:ogc:def:crs:EPSG::1")
	assert.ErrorIs(t, err, ErrUnknownEPSG)

	_, err = ParseCRSName("Mars 2000")
	assert.ErrorIs(t, err, ErrUnknownEPSG)
}
