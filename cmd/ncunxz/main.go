package main

import (
	"os"

	"github.com/woozymasta/coastprep/internal/archive"
	"github.com/woozymasta/coastprep/internal/config"
	"github.com/woozymasta/coastprep/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file"`

	Args struct {
		Folder string `positional-arg-name:"FOLDER" description:"Folder holding *.nc.xz files"`
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

	folder := cfg.Decompress.Folder
	if opts.Args.Folder != "" {
		folder = opts.Args.Folder
	}
	if folder == "" {
		log.Fatal().Msg("Folder is required")
	}

	out, err := archive.DecompressAll(folder)
	if err != nil {
		log.Fatal().Err(err).Str("folder", folder).Msg("Decompression failed")
	}

	log.Info().Str("folder", folder).Int("files", len(out)).Msg("Decompression finished")
}
