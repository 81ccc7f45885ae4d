// Command registrar-admin runs maintenance tasks against the store
// configured in the environment.
package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/internal/config"
	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration")
	}

	dialector, err := models.Dialector(cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	db, err := models.Connect(dialector)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	cli := &commandLine{db: db, auth: auth.NewAuthenticator(db), out: os.Stdout}
	err = cli.run(os.Args)
	_ = models.Close(db)

	if errors.Is(err, errHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(os.Args[1])
	}
}
