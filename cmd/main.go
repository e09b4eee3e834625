package main

import (
	"os"

	"flag-quiz-service/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("flag-quiz exited")
		os.Exit(1)
	}
}
