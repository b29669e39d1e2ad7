package testutil

import (
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

// CreateS3 starts a MinIO container for the duration of the test and returns
// its endpoint.
func CreateS3(t *testing.T) *url.URL {
	container, err := minio.Run(t.Context(), "minio/minio:latest")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	addr, err := container.ConnectionString(t.Context())
	require.NoError(t, err)

	return Must(url.Parse("http://" + addr))(t)
}

// NewAWSConfig returns an AWS config with static MinIO credentials.
func NewAWSConfig(t *testing.T) aws.Config {
	cfg, err := config.LoadDefaultConfig(
		t.Context(),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
		}),
		func(o *config.LoadOptions) error {
			o.Region = "us-east-1"
			return nil
		},
	)
	require.NoError(t, err)
	return cfg
}

// WithEndpoint points an S3 client at endpoint using path style addressing.
func WithEndpoint(endpoint *url.URL) func(*s3.Options) {
	return func(o *s3.Options) {
		base := endpoint.String()
		o.BaseEndpoint = &base
		o.UsePathStyle = true
	}
}

func NewS3Client(t *testing.T, endpoint *url.URL) *s3.Client {
	return s3.NewFromConfig(NewAWSConfig(t), WithEndpoint(endpoint))
}

func CreateBucket(t *testing.T, client *s3.Client, name string) {
	_, err := client.CreateBucket(t.Context(), &s3.CreateBucketInput{Bucket: aws.String(name)})
	require.NoError(t, err)
}
