package aws

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/storacha/resume-converter/pkg/telemetry"
	"github.com/storacha/resume-converter/pkg/types"
)

var log = telemetry.NewSentryLogger("aws")

// SNSPublisher is the part of the SNS API used to announce conversions
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSConversionNotifier publishes a message to an SNS topic for each
// converted resume
type SNSConversionNotifier struct {
	topicArn  string
	snsClient SNSPublisher
}

var _ types.ConversionNotifier = (*SNSConversionNotifier)(nil)

func NewSNSConversionNotifier(config aws.Config, topicArn string) *SNSConversionNotifier {
	return NewSNSConversionNotifierWithClient(sns.NewFromConfig(config), topicArn)
}

// NewSNSConversionNotifierWithClient returns a notifier publishing through client
func NewSNSConversionNotifierWithClient(client SNSPublisher, topicArn string) *SNSConversionNotifier {
	return &SNSConversionNotifier{
		snsClient: client,
		topicArn:  topicArn,
	}
}

// NotifyConverted implements types.ConversionNotifier.
func (s *SNSConversionNotifier) NotifyConverted(ctx context.Context, msg types.ConversionMessage) {
	messageJSON, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("serializing conversion message: %s", err.Error())
		return
	}
	_, err = s.snsClient.Publish(ctx, &sns.PublishInput{TopicArn: aws.String(s.topicArn), Message: aws.String(string(messageJSON))})
	if err != nil {
		log.Errorf("publishing conversion message %s: %s", msg.ID, err.Error())
	}
}
