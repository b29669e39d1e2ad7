package main

import (
	"context"

	"github.com/storacha/resume-converter/cmd/lambda"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/types"
)

func main() {
	lambda.Start(makeHandler)
}

func makeHandler(cfg aws.Config) any {
	service, err := aws.Construct(cfg)
	if err != nil {
		panic(err)
	}
	return func(ctx context.Context, event types.ConversionEvent) (types.Result, error) {
		return service.Convert(ctx, event)
	}
}
