/*
Ingest is the executable that performs the one-time bulk load of the galaxy
archive, fetching all six collections from the upstream API and writing them,
with their cross-references, to the SQLite database in a single transaction.

Usage:

	ingest [flags]

The program refuses to run against a database that already contains archive
entities; delete the database file to reload from scratch.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/atrelle/holonet/pkg/ingest"
	"github.com/atrelle/holonet/pkg/storage/sqlite"
)

// IngestConfiguration describes the loader configuration; values are read
// from the environment (prefix HOLONET) and command line flags.
type IngestConfiguration struct {
	DB struct {
		Filename string `conf:"default:./holonet.db"`
	}
	Source struct {
		BaseURL string `conf:"default:https://swapi.dev/api/"`
	}
	Debug bool
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg IngestConfiguration
	if err := conf.Parse(os.Args[1:], "HOLONET", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("HOLONET", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	storage, err := sqlite.New(logger, cfg.DB.Filename)
	if err != nil {
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer storage.Close()

	client := ingest.NewClient(cfg.Source.BaseURL, logger)
	loader := ingest.NewLoader(storage.Connection, client, logger)

	if err = loader.Run(); err != nil {
		if errors.Is(err, ingest.ErrPopulated) {
			logger.Warn("archive already populated, nothing to do")
			return nil
		}
		return fmt.Errorf("loading archive: %w", err)
	}

	return nil
}
