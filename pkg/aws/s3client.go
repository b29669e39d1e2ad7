package aws

import (
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const connectTimeout = 5 * time.Second

// NewS3Client returns an S3 client that never retries and fails fast when the
// endpoint cannot be reached. Extra options are applied last.
func NewS3Client(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
	httpClient := awshttp.NewBuildableClient().WithDialerOptions(func(d *net.Dialer) {
		d.Timeout = connectTimeout
	})
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Retryer = aws.NopRetryer{}
			o.HTTPClient = httpClient
		},
	}
	return s3.NewFromConfig(cfg, append(opts, optFns...)...)
}
