package main

import (
	"os"

	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/logger"
	"github.com/woozymasta/coastprep/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"       env:"CONFIG_FILE"  description:"Path to configuration file"`
	PreviewSize int    `short:"s" long:"preview-size" env:"PREVIEW_SIZE" description:"Longest edge of preview images in pixels"`
	Preview     bool   `short:"p" long:"preview"      description:"Write a WebP preview next to each source"`
	Compact     bool   `short:"m" long:"compact"      description:"Minify GeoJSON and KML output"`

	Args struct {
		Root string `positional-arg-name:"ROOT" description:"Directory tree to convert"`
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

	root := cfg.Convert.Root
	if opts.Args.Root != "" {
		root = opts.Args.Root
	}
	if root == "" {
		log.Fatal().Msg("Root directory is required")
	}

	convOpts := processor.ConvertOptions{
		PreviewSize: cfg.Convert.PreviewSize,
		Preview:     cfg.Convert.Preview || opts.Preview,
		Compact:     cfg.Convert.Compact || opts.Compact,
	}
	if opts.PreviewSize > 0 {
		convOpts.PreviewSize = opts.PreviewSize
	}

	log.Info().
		Str("root", root).
		Bool("preview", convOpts.Preview).
		Bool("compact", convOpts.Compact).
		Msg("Starting conversion")

	report, err := processor.ConvertTree(root, convOpts)
	if err != nil {
		log.Fatal().Err(err).Str("root", root).Msg("Failed to walk directory")
	}

	log.Info().
		Int("converted", report.Converted).
		Int("written", len(report.Written)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("Conversion finished")
}
