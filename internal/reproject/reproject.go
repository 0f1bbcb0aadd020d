// Package reproject transforms a vector file into another coordinate reference system.
package reproject

import (
	"fmt"

	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/rs/zerolog/log"
)

// File reprojects input to the EPSG code found under settings "output_epsg"
// and writes the result as GeoJSON to output, replacing any existing file.
//
// The settings are validated before any file is opened. An input without CRS
// metadata is reported and nothing is written.
func File(input, output string, settings config.Settings) error {
	target, err := settings.OutputEPSG()
	if err != nil {
		return err
	}
	if _, err := geo.LookupEPSG(target); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidOutputEPSG, err)
	}

	fc, err := vector.Read(input, "")
	if err != nil {
		return err
	}

	if !fc.CRS.Known() {
		log.Error().
			Str("input", input).
			Msg("No CRS information found in input file, nothing written")

		return fmt.Errorf("%s: %w", input, geo.ErrUnknownCRS)
	}

	log.Info().
		Str("input", input).
		Str("crs", fc.CRS.String()).
		Msg("Current CRS detected")

	out, err := fc.Reproject(target)
	if err != nil {
		return fmt.Errorf("reproject %s to EPSG:%d: %w", input, target, err)
	}

	log.Info().
		Str("input", input).
		Int("epsg", target).
		Int("features", out.Len()).
		Msg("Transformed")

	if err := vector.Write(out, output, vector.DriverGeoJSON); err != nil {
		return err
	}

	log.Info().
		Str("output", output).
		Msg("Transformed GeoJSON saved")

	return nil
}
