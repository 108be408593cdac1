package main

import (
	"os"

	"github.com/astewartau/biql/internal/cli"
)

// Version information, set by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date, builtBy)
	os.Exit(cli.Execute())
}
