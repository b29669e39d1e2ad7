package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/telemetry"
)

// handlerFactory is a factory function that returns a function suitable to use as a lambda handler. See
// https://docs.aws.amazon.com/lambda/latest/dg/golang-handler.html#golang-handler-signatures for information on the
// valid signatures a handler function can have to be used as a lambda handler.
type handlerFactory func(cfg aws.Config) any

// Start starts the lambda with the handler obtained from the factory function. makeHandler is a factory function that
// returns a handler suitable to use as a lambda handler.
// The handler is instrumented with OpenTelemetry if a Honeycomb API key is provided, and errors are reported to
// Sentry if a DSN is configured.
func Start(makeHandler handlerFactory) {
	logging.SetLogLevel("*", "info")

	ctx := context.Background()
	cfg := aws.FromEnv(ctx)

	flushSentry, err := telemetry.SetupSentry(cfg.SentryDSN, cfg.SentryEnvironment)
	if err != nil {
		panic(err)
	}
	defer flushSentry()

	// an empty API key disables instrumentation
	if cfg.HoneycombAPIKey != "" {
		tp, telemetryShutdown, err := telemetry.SetupTelemetry(ctx, &cfg.Config)
		if err != nil {
			panic(err)
		}
		defer telemetryShutdown(ctx)

		handler := makeHandler(cfg)
		instrumentedHandler := telemetry.GetInstrumentedLambdaHandler(handler, tp)

		lambda.StartWithOptions(instrumentedHandler, lambda.WithContext(ctx))
	} else {
		lambda.StartWithOptions(makeHandler(cfg), lambda.WithContext(ctx))
	}
}
