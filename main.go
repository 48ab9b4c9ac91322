package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/davidbalbert/isolinuxfs/cmd"
	"github.com/davidbalbert/isolinuxfs/config"
)

var (
	configPath  = flag.String("config", "", "path to a TOML config file")
	logLevel    = flag.String("log-level", "", "log level, overriding the config file")
	cacheBlocks = flag.Int("cache-blocks", -1, "blocks kept in the directory cache, overriding the config file")
)

func loadConfig() (*config.Config, error) {
	conf := config.Default()
	if *configPath != "" {
		var err error
		conf, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}
	if *cacheBlocks >= 0 {
		conf.CacheBlocks = *cacheBlocks
	}

	return conf, conf.Validate()
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	for _, c := range cmd.Commands() {
		subcommands.Register(c, "")
	}

	flag.Parse()

	conf, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := conf.Logger()
	if err != nil {
		log.Fatal(err)
	}

	// The disk package logs through the standard logger.
	log.SetLevel(logger.GetLevel())
	log.SetFormatter(logger.Formatter)

	env := &cmd.Env{
		Config: conf,
		Log:    logger,
		Stdout: os.Stdout,
	}

	os.Exit(int(subcommands.Execute(context.Background(), env)))
}
