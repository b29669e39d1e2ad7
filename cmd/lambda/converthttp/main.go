package main

import (
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/storacha/resume-converter/cmd/lambda"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/server"
)

func main() {
	lambda.Start(makeHandler)
}

func makeHandler(cfg aws.Config) any {
	service, err := aws.Construct(cfg)
	if err != nil {
		panic(err)
	}
	var opts []server.Option
	if cfg.HoneycombAPIKey != "" {
		opts = append(opts, server.WithTelemetry())
	}
	return httpadapter.NewV2(server.NewServer(service, opts...)).ProxyWithContext
}
