package main

import (
	"os"
	"time"

	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/logger"
	"github.com/woozymasta/coastprep/internal/tide"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

const defaultTimestep = 15 * time.Minute

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string    `short:"c" long:"config"       env:"CONFIG_FILE" description:"Path to configuration file"`
	ModelConfig string    `short:"m" long:"model-config" description:"Tide model configuration file"`
	Shoreline   string    `short:"s" long:"shoreline"    description:"Vector file whose centroid is the prediction site"`
	Output      string    `short:"o" long:"out"          description:"Output file (.csv or .xlsx), stdout when empty"`
	Start       string    `long:"start"                  description:"Start of the range (RFC 3339)"`
	End         string    `long:"end"                    description:"End of the range, exclusive (RFC 3339)"`
	Centroid    []float64 `long:"centroid"               description:"Site as lon then lat, repeat the flag twice"`
	Timestep    int       `short:"t" long:"timestep"     description:"Sampling step in seconds"`
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

	opts.Logger.Setup()

	cfg, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	tc := cfg.Tide
	applyFlags(&tc, opts)

	if tc.ModelConfig == "" {
		log.Fatal().Msg("Tide model configuration is required")
	}

	handlers, err := tide.LoadConfig(tc.ModelConfig)
	if err != nil {
		log.Fatal().Err(err).Str("path", tc.ModelConfig).Msg("Failed to load tide models")
	}

	ocean, err := handlers.Get(orDefault(tc.OceanHandler, tide.OceanHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Ocean tide handler")
	}
	load, err := handlers.Get(orDefault(tc.LoadHandler, tide.LoadHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Load tide handler")
	}

	centroid, err := resolveCentroid(tc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve centroid")
	}

	step := defaultTimestep
	if tc.Timestep > 0 {
		step = time.Duration(tc.Timestep) * time.Second
	}

	log.Info().
		Float64("lon", centroid.Lon).
		Float64("lat", centroid.Lat).
		Time("start", tc.Start).
		Time("end", tc.End).
		Dur("step", step).
		Msg("Computing tides")

	series, err := tide.ComputeTide(centroid, tide.DateRange{Start: tc.Start, End: tc.End}, step, ocean, load)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute tides")
	}

	if tc.Output == "" {
		if err := series.WriteCSV(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to write tides")
		}
		return
	}
	if err := series.WriteFile(tc.Output); err != nil {
		log.Fatal().Err(err).Str("path", tc.Output).Msg("Failed to write tides")
	}
}

func applyFlags(tc *config.Tide, opts Options) {
	if opts.ModelConfig != "" {
		tc.ModelConfig = opts.ModelConfig
	}
	if opts.Shoreline != "" {
		tc.Shoreline = opts.Shoreline
		tc.Centroid = nil
	}
	if len(opts.Centroid) > 0 {
		tc.Centroid = opts.Centroid
	}
	if opts.Output != "" {
		tc.Output = opts.Output
	}
	if opts.Timestep > 0 {
		tc.Timestep = opts.Timestep
	}
	if opts.Start != "" {
		tc.Start = mustParseTime("start", opts.Start)
	}
	if opts.End != "" {
		tc.End = mustParseTime("end", opts.End)
	}
}

func resolveCentroid(tc config.Tide) (tide.Centroid, error) {
	if len(tc.Centroid) > 0 || tc.Shoreline == "" {
		return tide.NewCentroid(tc.Centroid)
	}

	c, err := tide.ShorelineCentroid(tc.Shoreline)
	if err != nil {
		return tide.Centroid{}, err
	}
	log.Info().Str("shoreline", tc.Shoreline).Msg("Centroid derived from shoreline")

	return c, nil
}

func mustParseTime(name, value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Fatal().Err(err).Str(name, value).Msg("Invalid time")
	}

	return t
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
