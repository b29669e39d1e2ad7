package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/storacha/resume-converter/pkg/types"
)

// ErrEmptyConversionMessage means a queued message named no file
var ErrEmptyConversionMessage = errors.New("conversion message has no fileToConvert")

// longPollSeconds is how long Read waits for messages to arrive
const longPollSeconds = 20

// SQSConversionQueue queues conversion events on SQS, and reads them back for
// pollers that do not run as the queue lambda
type SQSConversionQueue struct {
	queueURL  string
	sqsClient *sqs.Client
}

// NewSQSConversionQueue returns a new SQSConversionQueue for the given aws config
func NewSQSConversionQueue(cfg aws.Config, queueURL string) *SQSConversionQueue {
	return NewSQSConversionQueueWithClient(sqs.NewFromConfig(cfg), queueURL)
}

// NewSQSConversionQueueWithClient returns a new SQSConversionQueue using an existing client
func NewSQSConversionQueueWithClient(client *sqs.Client, queueURL string) *SQSConversionQueue {
	return &SQSConversionQueue{
		queueURL:  queueURL,
		sqsClient: client,
	}
}

// Queue sends event to the conversion queue.
func (s *SQSConversionQueue) Queue(ctx context.Context, event types.ConversionEvent) error {
	if event.FileToConvert == "" {
		return ErrEmptyConversionMessage
	}
	messageJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializing message json: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(messageJSON)),
	}
	// FIFO queues need a group, and an explicit dedupe ID unless content
	// based deduplication is on
	if strings.HasSuffix(s.queueURL, ".fifo") {
		input.MessageGroupId = aws.String("default")
		input.MessageDeduplicationId = aws.String(uuid.NewString())
	}
	_, err = s.sqsClient.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("enqueueing message: %w", err)
	}
	return nil
}

// Read receives up to maxJobs conversion jobs, waiting for messages to arrive
// if the queue is empty. A job's ID is its message receipt handle. Messages that
// are not conversion events are deleted.
func (s *SQSConversionQueue) Read(ctx context.Context, maxJobs int) ([]types.ConversionJob, error) {
	res, err := s.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: int32(maxJobs),
		WaitTimeSeconds:     longPollSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("receiving messages: %w", err)
	}
	jobs := make([]types.ConversionJob, 0, len(res.Messages))
	for _, msg := range res.Messages {
		receipt := aws.ToString(msg.ReceiptHandle)
		event, err := DecodeConversionMessage(aws.ToString(msg.Body))
		if err != nil {
			log.Errorf("dropping message %s: %s", aws.ToString(msg.MessageId), err.Error())
			if err := s.Delete(ctx, receipt); err != nil {
				log.Warnf("deleting message %s: %s", aws.ToString(msg.MessageId), err.Error())
			}
			continue
		}
		jobs = append(jobs, types.ConversionJob{ID: receipt, Event: event})
	}
	return jobs, nil
}

// Release makes a received message visible again so it can be retried.
func (s *SQSConversionQueue) Release(ctx context.Context, jobID string) error {
	_, err := s.sqsClient.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(s.queueURL),
		ReceiptHandle:     aws.String(jobID),
		VisibilityTimeout: 0,
	})
	if err != nil {
		return fmt.Errorf("releasing message: %w", err)
	}
	return nil
}

// Delete removes a received message from the queue.
func (s *SQSConversionQueue) Delete(ctx context.Context, jobID string) error {
	_, err := s.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: aws.String(jobID),
	})
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// DecodeConversionMessage decodes a conversion event from an SQS message body
func DecodeConversionMessage(messageBody string) (types.ConversionEvent, error) {
	var event types.ConversionEvent
	err := json.Unmarshal([]byte(messageBody), &event)
	if err != nil {
		return types.ConversionEvent{}, fmt.Errorf("deserializing message: %w", err)
	}
	if event.FileToConvert == "" {
		return types.ConversionEvent{}, ErrEmptyConversionMessage
	}
	return event, nil
}
