package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input vector file (.shp, .geojson, .kml, .kmz)" required:"true"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Driver string `short:"d" long:"driver" description:"Force a driver" choice:"ESRI Shapefile" choice:"GeoJSON" choice:"KML"`
}

type field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type summary struct {
	Name          string    `json:"name" yaml:"name"`
	CRS           string    `json:"crs" yaml:"crs"`
	CRSName       string    `json:"crs_name,omitempty" yaml:"crs_name,omitempty"`
	Features      int       `json:"features" yaml:"features"`
	GeometryTypes []string  `json:"geometry_types" yaml:"geometry_types"`
	Fields        []field   `json:"fields" yaml:"fields"`
	Bounds        []float64 `json:"bounds,omitempty" yaml:"bounds,omitempty"` // minx, miny, maxx, maxy
	Centroid      []float64 `json:"centroid,omitempty" yaml:"centroid,omitempty"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	fc, err := vector.Read(opts.Input, vector.Driver(opts.Driver))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	s := summarize(fc)

	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(s)
	} else {
		outputData, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(string(outputData))
}

func summarize(fc *geo.FeatureCollection) summary {
	s := summary{
		Name:          fc.Name,
		CRS:           fc.CRS.String(),
		Features:      fc.Len(),
		GeometryTypes: fc.GeometryTypes(),
		Fields:        make([]field, 0, len(fc.Fields)),
	}
	if fc.CRS.EPSG != 0 {
		s.CRSName = fc.CRS.Name
	}

	for _, f := range fc.Fields {
		s.Fields = append(s.Fields, field{Name: f.Name, Type: f.Type.String()})
	}

	if b, ok := fc.Bound(); ok {
		s.Bounds = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}
	if c, err := geo.Centroid(fc); err == nil {
		s.Centroid = []float64{c[0], c[1]}
	}

	return s
}
