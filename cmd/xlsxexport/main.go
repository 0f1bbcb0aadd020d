package main

import (
	"os"

	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/export"
	"github.com/woozymasta/coastprep/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file"`

	Args struct {
		Paths []string `positional-arg-name:"FILE" description:"Vector files to export"`
	} `positional-args:"yes"`
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

	paths := cfg.Export
	if len(opts.Args.Paths) > 0 {
		paths = opts.Args.Paths
	}
	if len(paths) == 0 {
		log.Fatal().Msg("No files to export")
	}

	failed := 0
	for _, p := range paths {
		out, err := export.Spreadsheet(p)
		if err != nil {
			log.Error().Err(err).Str("source", p).Msg("Export failed")
			failed++
			continue
		}
		log.Info().Str("source", p).Str("output", out).Msg("Exported")
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Int("total", len(paths)).Msg("Export finished with errors")
	}
}
