// Command prepare turns a companies dataset file into a map layout. The
// layout is written to a file or stdout and can optionally be uploaded to
// MinIO together with the source dataset.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		log := zerolog.New(os.Stderr)
		log.Error().Err(err).Msg("prepare failed")
		os.Exit(1)
	}
}
