package cmd

import (
	"github.com/achilleasa/orbitrender/log"
	"github.com/urfave/cli"
)

var logger = log.New("orbitrender")

// Apply the configured log level; the -v and -vv flags take precedence.
func setupLogging(ctx *cli.Context, levelName string) {
	if levelName != "" {
		level, err := log.ParseLevel(levelName)
		if err != nil {
			logger.Warningf("%v; using %s", err, log.Notice)
		}
		log.SetLevel(level)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
