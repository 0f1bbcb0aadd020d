package vector

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// geojsonDocument is a FeatureCollection with the legacy "crs" member GDAL reads and writes.
type geojsonDocument struct {
	Type     string             `json:"type"`
	Name     string             `json:"name,omitempty"`
	CRS      *namedCRS          `json:"crs,omitempty"`
	Features []*geojson.Feature `json:"features"`
}

type namedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type geojsonProbe struct {
	Type string    `json:"type"`
	Name string    `json:"name"`
	CRS  *namedCRS `json:"crs"`
}

func readGeoJSONFile(path string) (*geo.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return decodeGeoJSON(data)
}

func decodeGeoJSON(data []byte) (*geo.FeatureCollection, error) {
	var probe geojsonProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	fc := geo.NewFeatureCollection(probe.Name, crsFromMember(probe.CRS))

	switch probe.Type {
	case "FeatureCollection":
		var doc geojsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		for _, f := range doc.Features {
			if f == nil {
				continue
			}
			fc.Append(f.Geometry, f.Properties).ID = f.ID
		}

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		fc.Append(f.Geometry, f.Properties).ID = f.ID

	case "":
		return nil, fmt.Errorf("decode geojson: missing type member")

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		fc.Append(g.Geometry(), nil)
	}

	return fc, nil
}

// crsFromMember follows RFC 7946: no member means WGS84 longitude/latitude.
func crsFromMember(member *namedCRS) geo.CRS {
	if member == nil || member.Properties.Name == "" {
		return geo.WGS84()
	}

	crs, err := geo.ParseCRSName(member.Properties.Name)
	if err != nil {
		log.Warn().
			Err(err).
			Str("crs", member.Properties.Name).
			Msg("Unrecognized GeoJSON crs member, CRS left unknown")

		return geo.CRS{}
	}

	return crs
}

func encodeGeoJSON(w io.Writer, fc *geo.FeatureCollection, opts WriteOptions) error {
	doc := geojsonDocument{
		Type:     "FeatureCollection",
		Name:     fc.Name,
		Features: fc.Features,
	}
	if doc.Features == nil {
		doc.Features = []*geojson.Feature{}
	}

	if urn := fc.CRS.URN(); urn != "" && fc.CRS.EPSG != geo.WGS84().EPSG {
		doc.CRS = &namedCRS{Type: "name"}
		doc.CRS.Properties.Name = urn
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if opts.Compact {
		if data, err = compact(mimeGeoJSON, data); err != nil {
			return err
		}
	}

	_, err = w.Write(append(data, '\n'))
	return err
}
