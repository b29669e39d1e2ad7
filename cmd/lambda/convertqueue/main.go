package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/resume-converter/cmd/lambda"
	"github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/service"
	"github.com/storacha/resume-converter/pkg/types"
)

var log = logging.Logger("lambda/convertqueue")

func main() {
	lambda.Start(makeHandler)
}

func makeHandler(cfg aws.Config) any {
	svc, err := aws.Construct(cfg)
	if err != nil {
		panic(err)
	}
	return func(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
		return handleEvent(ctx, svc, sqsEvent), nil
	}
}

// handleEvent converts every queued event in turn. Messages whose conversion
// may succeed on another attempt are reported back so only they are
// redelivered. Conversions that can never succeed are acknowledged, the same
// way the queue poller treats them.
func handleEvent(ctx context.Context, svc types.Service, sqsEvent events.SQSEvent) events.SQSEventResponse {
	var response events.SQSEventResponse
	handler := service.NewJobHandler(svc)
	for _, msg := range sqsEvent.Records {
		if err := handleMessage(ctx, handler, msg); err != nil {
			log.Errorf("message %s: %s", msg.MessageId, err.Error())
			response.BatchItemFailures = append(response.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: msg.MessageId,
			})
		}
	}
	return response
}

func handleMessage(ctx context.Context, handler service.JobHandler, msg events.SQSMessage) error {
	event, err := aws.DecodeConversionMessage(msg.Body)
	if err != nil {
		return err
	}
	return handler.Handle(ctx, types.ConversionJob{ID: msg.MessageId, Event: event})
}
