package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/urfave/cli/v2"
)

var enqueueCmd = &cli.Command{
	Name:      "enqueue",
	Usage:     "queue files for conversion by the queue lambda",
	ArgsUsage: "<fileToConvert>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "queue-url",
			Aliases:  []string{"q"},
			EnvVars:  []string{"CONVERSION_QUEUE_URL"},
			Required: true,
			Usage:    "URL of the SQS conversion queue",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() == 0 {
			return fmt.Errorf("expected at least one file name")
		}
		awsConfig, err := config.LoadDefaultConfig(cCtx.Context)
		if err != nil {
			return fmt.Errorf("loading aws default config: %w", err)
		}
		queue := aws.NewSQSConversionQueue(awsConfig, cCtx.String("queue-url"))
		for _, name := range cCtx.Args().Slice() {
			if err := queue.Queue(cCtx.Context, types.ConversionEvent{FileToConvert: name}); err != nil {
				return fmt.Errorf("queueing %q: %w", name, err)
			}
			log.Infof("queued %s", name)
		}
		return nil
	},
}
