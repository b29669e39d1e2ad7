package aws_test

import (
	"os"
	"runtime"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/storacha/resume-converter/internal/testutil"
	iaws "github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestDecodeConversionMessage(t *testing.T) {
	testCases := []struct {
		name          string
		body          string
		expected      types.ConversionEvent
		expectedErr   error
		expectAnError bool
	}{
		{
			name:     "valid message",
			body:     `{"fileToConvert":"resume.txt"}`,
			expected: types.ConversionEvent{FileToConvert: "resume.txt"},
		},
		{
			name:     "extra fields are ignored",
			body:     `{"fileToConvert":"cv.docx","requestedBy":"ops"}`,
			expected: types.ConversionEvent{FileToConvert: "cv.docx"},
		},
		{
			name:        "empty filename",
			body:        `{"fileToConvert":""}`,
			expectedErr: iaws.ErrEmptyConversionMessage,
		},
		{
			name:        "missing filename",
			body:        `{}`,
			expectedErr: iaws.ErrEmptyConversionMessage,
		},
		{
			name:          "not json",
			body:          `resume.txt`,
			expectAnError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := iaws.DecodeConversionMessage(tc.body)
			switch {
			case tc.expectedErr != nil:
				require.ErrorIs(t, err, tc.expectedErr)
			case tc.expectAnError:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				require.Equal(t, tc.expected, event)
			}
		})
	}
}

func TestSQSConversionQueue(t *testing.T) {
	if os.Getenv("CI") != "" && runtime.GOOS != "linux" {
		t.SkipNow()
	}

	sqsClient := newSQSClient(t, createSQS(t))
	queueURL := createQueue(t, sqsClient, "conversions-"+uuid.NewString())
	queue := iaws.NewSQSConversionQueueWithClient(sqsClient, queueURL)

	require.ErrorIs(t, queue.Queue(t.Context(), types.ConversionEvent{}), iaws.ErrEmptyConversionMessage)

	require.NoError(t, queue.Queue(t.Context(), types.ConversionEvent{FileToConvert: "resume.txt"}))
	_, err := sqsClient.SendMessage(t.Context(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String("not a conversion event"),
	})
	require.NoError(t, err)

	jobs := readAll(t, queue, 1)
	require.Len(t, jobs, 1)
	require.Equal(t, "resume.txt", jobs[0].Event.FileToConvert)
	require.NotEmpty(t, jobs[0].ID)

	// released jobs are redelivered
	require.NoError(t, queue.Release(t.Context(), jobs[0].ID))
	jobs = readAll(t, queue, 1)
	require.Len(t, jobs, 1)
	require.Equal(t, "resume.txt", jobs[0].Event.FileToConvert)

	require.NoError(t, queue.Delete(t.Context(), jobs[0].ID))
	attrs, err := sqsClient.GetQueueAttributes(t.Context(), &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
		},
	})
	require.NoError(t, err)
	// nothing is left in flight once the job is deleted
	require.Equal(t, "0", attrs.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible)])
}

// readAll reads until expected messages have been received, since a single
// receive may return fewer messages than are available
func readAll(t *testing.T, queue *iaws.SQSConversionQueue, expected int) []types.ConversionJob {
	var jobs []types.ConversionJob
	for attempt := 0; attempt < 5 && len(jobs) < expected; attempt++ {
		batch, err := queue.Read(t.Context(), 10)
		require.NoError(t, err)
		jobs = append(jobs, batch...)
	}
	return jobs
}

func createSQS(t *testing.T) string {
	container, err := testcontainers.Run(
		t.Context(),
		"softwaremill/elasticmq-native:latest",
		testcontainers.WithExposedPorts("9324/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("9324/tcp")),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	endpoint, err := container.PortEndpoint(t.Context(), "9324/tcp", "http")
	require.NoError(t, err)
	return endpoint
}

func newSQSClient(t *testing.T, endpoint string) *sqs.Client {
	cfg := testutil.NewAWSConfig(t)
	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

func createQueue(t *testing.T, sqsClient *sqs.Client, name string) string {
	res, err := sqsClient.CreateQueue(t.Context(), &sqs.CreateQueueInput{
		QueueName: aws.String(name),
	})
	require.NoError(t, err)
	return aws.ToString(res.QueueUrl)
}
