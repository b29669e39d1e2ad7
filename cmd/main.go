package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("cmd")

func main() {
	logging.SetLogLevel("*", "info")

	app := &cli.App{
		Name:  "resume-converter",
		Usage: "Convert resumes stored in S3 to PDF.",
		Commands: []*cli.Command{
			serverCmd,
			convertCmd,
			invokeCmd,
			enqueueCmd,
			statusCmd,
			versionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
