package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/storacha/resume-converter/pkg/build"
	"github.com/storacha/resume-converter/pkg/convert"
	"github.com/storacha/resume-converter/pkg/service"
)

// ErrNoSentryDSN means that the value returned from Secrets was empty
var ErrNoSentryDSN = errors.New("no value for sentry DSN")

func mustGetEnv(envVar string) string {
	value := os.Getenv(envVar)
	if len(value) == 0 {
		panic(fmt.Errorf("missing env var: %s", envVar))
	}
	return value
}

// Config describes all the values required to setup AWS from the environment
type Config struct {
	aws.Config
	Bucket              string
	SourcePrefix        string
	DestinationPrefix   string
	ScratchDir          string
	URLExpiry           time.Duration
	ConversionQueueURL  string
	ConversionTopicArn  string
	ConversionTableName string
	SentryDSN           string
	SentryEnvironment   string
	HoneycombAPIKey     string
}

// FromEnv constructs the AWS Configuration from the environment
func FromEnv(ctx context.Context) Config {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Errorf("loading aws default config: %w", err))
	}

	scratchDir := os.Getenv("SCRATCH_DIR")
	if len(scratchDir) == 0 {
		scratchDir = os.TempDir()
	}

	var urlExpiry time.Duration
	if len(os.Getenv("CONVERTED_URL_EXPIRY")) != 0 {
		urlExpiry, err = time.ParseDuration(os.Getenv("CONVERTED_URL_EXPIRY"))
		if err != nil {
			panic(fmt.Errorf("parsing CONVERTED_URL_EXPIRY: %w", err))
		}
		if urlExpiry < 0 {
			panic(fmt.Errorf("negative CONVERTED_URL_EXPIRY: %s", urlExpiry))
		}
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	if len(sentryDSN) == 0 && len(os.Getenv("SENTRY_DSN_PARAMETER")) != 0 {
		sentryDSN, err = getParameter(ctx, awsConfig, os.Getenv("SENTRY_DSN_PARAMETER"))
		if err != nil {
			panic(fmt.Errorf("retrieving sentry DSN: %w", err))
		}
	}

	return Config{
		Config:              awsConfig,
		Bucket:              mustGetEnv("AWS_S3_BUCKET"),
		SourcePrefix:        mustGetEnv("RESUME_DIRECTORY"),
		DestinationPrefix:   mustGetEnv("OUTPUT_DIRECTORY_S3"),
		ScratchDir:          scratchDir,
		URLExpiry:           urlExpiry,
		ConversionQueueURL:  os.Getenv("CONVERSION_QUEUE_URL"),
		ConversionTopicArn:  os.Getenv("CONVERSION_TOPIC_ARN"),
		ConversionTableName: os.Getenv("CONVERSION_TABLE_NAME"),
		SentryDSN:           sentryDSN,
		SentryEnvironment:   os.Getenv("SENTRY_ENVIRONMENT"),
		HoneycombAPIKey:     os.Getenv("HONEYCOMB_API_KEY"),
	}
}

func getParameter(ctx context.Context, cfg aws.Config, name string) (string, error) {
	ssmClient := ssm.NewFromConfig(cfg)
	response, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if response.Parameter == nil || response.Parameter.Value == nil || *response.Parameter.Value == "" {
		return "", ErrNoSentryDSN
	}
	return *response.Parameter.Value, nil
}

// Construct constructs the conversion service from AWS deps for Lambda functions
func Construct(cfg Config) (*service.ConversionService, error) {
	opts := []service.Option{
		service.WithRegistry(convert.DefaultRegistry(convert.WithCreator(build.UserAgent))),
		service.WithSourcePrefix(cfg.SourcePrefix),
		service.WithDestinationPrefix(cfg.DestinationPrefix),
		service.WithScratchDir(cfg.ScratchDir),
	}
	if cfg.ConversionTableName != "" {
		opts = append(opts, service.WithJournal(NewDynamoConversionTable(cfg.Config, cfg.ConversionTableName)))
	}
	if cfg.ConversionTopicArn != "" {
		opts = append(opts, service.WithNotifier(NewSNSConversionNotifier(cfg.Config, cfg.ConversionTopicArn)))
	}
	return service.New(
		NewS3Store(cfg.Config, cfg.Bucket),
		NewS3ObjectURLGenerator(cfg.Config, cfg.Bucket, cfg.URLExpiry),
		opts...,
	)
}
