package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/urfave/cli/v2"
)

var statusCmd = &cli.Command{
	Name:      "status",
	Usage:     "print the journaled outcome of a conversion",
	ArgsUsage: "<conversionID>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "table",
			Aliases:  []string{"t"},
			EnvVars:  []string{"CONVERSION_TABLE_NAME"},
			Required: true,
			Usage:    "name of the DynamoDB conversion journal table",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return fmt.Errorf("expected exactly one conversion ID")
		}
		awsConfig, err := config.LoadDefaultConfig(cCtx.Context)
		if err != nil {
			return fmt.Errorf("loading aws default config: %w", err)
		}
		table := aws.NewDynamoConversionTable(awsConfig, cCtx.String("table"))
		record, err := table.Get(cCtx.Context, cCtx.Args().First())
		if err != nil {
			if errors.Is(err, types.ErrKeyNotFound) {
				return fmt.Errorf("no conversion with ID %s", cCtx.Args().First())
			}
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}
