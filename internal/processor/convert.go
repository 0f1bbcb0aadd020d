// Package processor walks directory trees and converts every vector file it
// recognizes into the sibling formats that are still missing.
package processor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/rs/zerolog/log"
)

// ConvertOptions tune a batch conversion.
type ConvertOptions struct {
	// PreviewSize is the longest edge of the quicklook image in pixels.
	PreviewSize int
	// Preview also writes a <stem>.webp quicklook next to the source.
	Preview bool
	// Compact minifies GeoJSON and KML output.
	Compact bool
}

// Failure records one source file that could not be converted.
type Failure struct {
	Err    error
	Source string
}

// Report summarizes a ConvertTree run.
type Report struct {
	Written   []string
	Skipped   []string
	Failed    []Failure
	Converted int
}

// ConvertTree converts every .shp, .geojson, .kml and .kmz file below root.
//
// Each source yields <stem>.shp, <stem>.geojson and <stem>.kml in its own
// directory. A target that already exists is never rewritten, so the source
// itself and any earlier output survive re-runs. A file that fails to load or
// write is logged and recorded in the report and the walk moves on. Only an
// unreadable root is returned as an error.
func ConvertTree(root string, opts ConvertOptions) (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Error().Err(err).Str("path", path).Msg("Failed to read directory, skipping")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, ok := geo.DetectFormat(path)
		if !ok {
			return nil
		}

		written, skipped, err := ConvertFile(path, format, opts)
		report.Written = append(report.Written, written...)
		report.Skipped = append(report.Skipped, skipped...)

		if err != nil {
			log.Error().
				Err(err).
				Str("source", path).
				Msg("Failed to convert file")

			report.Failed = append(report.Failed, Failure{Source: path, Err: err})
			return nil
		}

		report.Converted++
		log.Info().
			Str("source", path).
			Int("written", len(written)).
			Int("skipped", len(skipped)).
			Msg("Converted to SHP, GeoJSON and KML")

		return nil
	})

	return report, err
}

// ConvertFile loads one source and writes every missing sibling format.
// It returns the paths written and the paths skipped because they existed.
func ConvertFile(path string, format geo.Format, opts ConvertOptions) (written, skipped []string, err error) {
	fc, err := vector.Read(path, vector.DriverFor(format))
	if err != nil {
		return nil, nil, err
	}

	writeOpts := vector.WriteOptions{Compact: opts.Compact}

	for _, target := range geo.TargetFormats {
		out := geo.SiblingPath(path, target)

		exists, err := fileExists(out)
		if err != nil {
			return written, skipped, err
		}
		if exists {
			log.Debug().Str("path", out).Msg("Output exists, skipping")
			skipped = append(skipped, out)
			continue
		}

		if err := vector.WriteWith(fc, out, vector.DriverFor(target), writeOpts); err != nil {
			return written, skipped, err
		}
		written = append(written, out)
	}

	if opts.Preview {
		out := previewPath(path)

		exists, err := fileExists(out)
		if err != nil {
			return written, skipped, err
		}
		if exists {
			skipped = append(skipped, out)
			return written, skipped, nil
		}

		if err := WritePreview(fc, out, opts.PreviewSize); err != nil {
			return written, skipped, err
		}
		written = append(written, out)
	}

	return written, skipped, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}
