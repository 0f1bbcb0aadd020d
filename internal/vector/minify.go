package vector

import (
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	xmlmin "github.com/tdewolff/minify/v2/xml"
)

const (
	mimeGeoJSON = "application/geo+json"
	mimeKML     = "application/vnd.google-earth.kml+xml"
)

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mimeGeoJSON, jsonmin.Minify)
	m.AddFunc(mimeKML, xmlmin.Minify)

	return m
}

func compact(mediatype string, data []byte) ([]byte, error) {
	return minifier.Bytes(mediatype, data)
}
