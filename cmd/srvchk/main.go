package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/khmm12/srvchk/internal/common/logging"
)

const programName = "srvchk"

type CLI struct {
	Version kong.VersionFlag `name:"version" help:"Print version and exit."`

	Serve Serve `embed:""`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name(programName),
		kong.Description("Probe hosts for reachability and push a notification when one goes down."),
		kong.Vars{"version": programName + " " + logging.Version()},
	)

	if err := serve(&cli); err != nil {
		os.Exit(1)
	}
}
