package main

import (
	"context"
	"fmt"
	"time"

	"github.com/storacha/resume-converter/internal/queuepoller"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/server"
	sv "github.com/storacha/resume-converter/pkg/service"
	"github.com/storacha/resume-converter/pkg/telemetry"
	"github.com/urfave/cli/v2"
)

const pollerShutdownTimeout = 30 * time.Second

var serverCmd = &cli.Command{
	Name:  "server",
	Usage: "HTTP server interface to the resume converter",
	Subcommands: []*cli.Command{
		{
			Name:  "start",
			Usage: "start a resume converter HTTP server backed by S3 (configured from the environment)",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "port",
					Aliases: []string{"p"},
					Value:   9000,
					EnvVars: []string{"PORT"},
					Usage:   "port to bind the server to",
				},
				&cli.BoolFlag{
					Name:  "poll-queue",
					Usage: "also convert events read from the SQS queue at CONVERSION_QUEUE_URL",
				},
				&cli.IntFlag{
					Name:  "queue-concurrency",
					Value: 4,
					Usage: "number of queued conversions to run at once",
				},
			},
			Action: func(cCtx *cli.Context) error {
				addr := fmt.Sprintf(":%d", cCtx.Int("port"))
				cfg := aws.FromEnv(cCtx.Context)

				flushSentry, err := telemetry.SetupSentry(cfg.SentryDSN, cfg.SentryEnvironment)
				if err != nil {
					return err
				}
				defer flushSentry()

				var opts []server.Option
				// an empty API key disables instrumentation
				if cfg.HoneycombAPIKey != "" {
					_, telemetryShutdown, err := telemetry.SetupTelemetry(cCtx.Context, &cfg.Config)
					if err != nil {
						return fmt.Errorf("setting up telemetry: %w", err)
					}
					defer telemetryShutdown(cCtx.Context)
					opts = append(opts, server.WithTelemetry())
				}

				service, err := aws.Construct(cfg)
				if err != nil {
					return err
				}

				if cCtx.Bool("poll-queue") {
					if cfg.ConversionQueueURL == "" {
						return fmt.Errorf("--poll-queue requires CONVERSION_QUEUE_URL")
					}
					handler := sv.NewJobHandler(service)
					poller, err := queuepoller.NewQueuePoller(
						aws.NewSQSConversionQueue(cfg.Config, cfg.ConversionQueueURL),
						handler,
						handler,
						queuepoller.WithConcurrency(cCtx.Int("queue-concurrency")),
					)
					if err != nil {
						return fmt.Errorf("creating queue poller: %w", err)
					}
					poller.Start()
					defer func() {
						ctx, cancel := context.WithTimeout(context.Background(), pollerShutdownTimeout)
						defer cancel()
						if err := poller.Stop(ctx); err != nil {
							log.Warnf("stopping queue poller: %s", err)
						}
					}()
				}

				return server.ListenAndServe(addr, service, opts...)
			},
		},
	},
}
