package aws

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/storacha/resume-converter/pkg/types"
)

// S3ObjectURLGenerator implements types.ObjectURLGenerator for objects in an
// S3 bucket.
//
// With a zero expiry the URL is resolved from the client's endpoint settings
// and carries no signature, so no credentials are needed, which is what a
// publicly readable bucket needs. With a positive expiry the URL is a
// presigned GET link valid for that long.
type S3ObjectURLGenerator struct {
	bucket        string
	expiry        time.Duration
	options       s3.Options
	resolver      s3.EndpointResolverV2
	presignClient *s3.PresignClient
}

var _ types.ObjectURLGenerator = (*S3ObjectURLGenerator)(nil)

// NewS3ObjectURLGeneratorWithClient returns a generator using an existing client
func NewS3ObjectURLGeneratorWithClient(client *s3.Client, bucket string, expiry time.Duration) *S3ObjectURLGenerator {
	options := client.Options()
	resolver := options.EndpointResolverV2
	if resolver == nil {
		resolver = s3.NewDefaultEndpointResolverV2()
	}
	return &S3ObjectURLGenerator{
		bucket:        bucket,
		expiry:        expiry,
		options:       options,
		resolver:      resolver,
		presignClient: s3.NewPresignClient(client),
	}
}

// NewS3ObjectURLGenerator returns a generator for the given AWS config
func NewS3ObjectURLGenerator(cfg aws.Config, bucket string, expiry time.Duration) *S3ObjectURLGenerator {
	return NewS3ObjectURLGeneratorWithClient(NewS3Client(cfg), bucket, expiry)
}

// URL implements types.ObjectURLGenerator.
func (g *S3ObjectURLGenerator) URL(ctx context.Context, key string) (string, error) {
	if g.expiry <= 0 {
		return g.objectURL(ctx, key)
	}
	req, err := g.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(g.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning %q: %w", key, err)
	}
	return req.URL, nil
}

// objectURL resolves the plain object URL the way the client would address
// the bucket, without signing anything.
func (g *S3ObjectURLGenerator) objectURL(ctx context.Context, key string) (string, error) {
	endpoint, err := g.resolver.ResolveEndpoint(ctx, s3.EndpointParameters{
		Bucket:         aws.String(g.bucket),
		Region:         aws.String(g.options.Region),
		Endpoint:       g.options.BaseEndpoint,
		ForcePathStyle: aws.Bool(g.options.UsePathStyle),
		UseFIPS:        aws.Bool(g.options.EndpointOptions.UseFIPSEndpoint == aws.FIPSEndpointStateEnabled),
		UseDualStack:   aws.Bool(g.options.EndpointOptions.UseDualStackEndpoint == aws.DualStackEndpointStateEnabled),
		Accelerate:     aws.Bool(g.options.UseAccelerate),
	})
	if err != nil {
		return "", fmt.Errorf("resolving endpoint for %q: %w", key, err)
	}
	return strings.TrimSuffix(endpoint.URI.String(), "/") + "/" + escapeKey(key), nil
}

// escapeKey percent-encodes each segment of an object key, keeping the
// slashes between them.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
