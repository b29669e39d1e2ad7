package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/client"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/urfave/cli/v2"
)

var invokeCmd = &cli.Command{
	Name:      "invoke",
	Usage:     "run one conversion and print the result",
	ArgsUsage: "<fileToConvert>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "send the conversion to a running converter server instead of converting against S3 (configured from the environment)",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return fmt.Errorf("expected exactly one file name")
		}

		var service types.Service
		if cCtx.String("url") != "" {
			serviceURL, err := url.Parse(cCtx.String("url"))
			if err != nil {
				return fmt.Errorf("parsing server URL: %w", err)
			}
			service = client.New(*serviceURL)
		} else {
			s, err := aws.Construct(aws.FromEnv(cCtx.Context))
			if err != nil {
				return err
			}
			service = s
		}

		result, err := service.Convert(cCtx.Context, types.ConversionEvent{FileToConvert: cCtx.Args().First()})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
