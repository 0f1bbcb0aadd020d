package main

import (
	"os"

	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/logger"
	"github.com/woozymasta/coastprep/internal/reproject"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file"`
	Input      string `short:"i" long:"in"     description:"Input vector file"`
	Output     string `short:"o" long:"out"    description:"Output GeoJSON file"`
	EPSG       int    `short:"e" long:"epsg"   env:"OUTPUT_EPSG" description:"Target EPSG code, overrides settings.output_epsg"`
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

	if opts.EPSG > 0 {
		cfg.Settings[config.OutputEPSGKey] = opts.EPSG
	}

	jobs := cfg.Reproject
	if opts.Input != "" || opts.Output != "" {
		if opts.Input == "" || opts.Output == "" {
			log.Fatal().Msg("Both --in and --out are required")
		}
		jobs = []config.ReprojectJob{{Input: opts.Input, Output: opts.Output}}
	}
	if len(jobs) == 0 {
		log.Fatal().Msg("Nothing to reproject")
	}

	failed := 0
	for _, job := range jobs {
		if err := reproject.File(job.Input, job.Output, cfg.Settings); err != nil {
			log.Error().Err(err).Str("input", job.Input).Str("output", job.Output).Msg("Reprojection failed")
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Int("total", len(jobs)).Msg("Reprojection finished with errors")
	}

	log.Info().Int("total", len(jobs)).Msg("Reprojection finished")
}
