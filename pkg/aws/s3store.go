package aws

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/storacha/resume-converter/pkg/types"
)

// S3Store implements the types.ObjectStore interface on S3
type S3Store struct {
	bucket     string
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

var _ types.ObjectStore = (*S3Store)(nil)

// Download implements types.ObjectStore.
func (s *S3Store) Download(ctx context.Context, key string, localPath string) error {
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating local file: %w", err)
	}
	_, err = s.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		f.Close()
		os.Remove(localPath)
		// wrap in error recognizable as a not found error for ObjectStore consumers
		if isNotFound(err) {
			return fmt.Errorf("getting object %q: %w", key, errors.Join(types.ErrKeyNotFound, err))
		}
		return fmt.Errorf("getting object %q: %w", key, err)
	}
	return f.Close()
}

// Upload implements types.ObjectStore.
func (s *S3Store) Upload(ctx context.Context, localPath string, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening local file: %w", err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if contentType := mime.TypeByExtension(filepath.Ext(localPath)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err = s.uploader.Upload(ctx, input)
	if err != nil {
		return fmt.Errorf("putting object %q: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var oe smithy.APIError
	if errors.As(err, &oe) {
		return oe.ErrorCode() == "NoSuchKey" || oe.ErrorCode() == "NotFound"
	}
	return false
}

// NewS3StoreWithClient returns an S3Store for bucket using an existing client
func NewS3StoreWithClient(client *s3.Client, bucket string) *S3Store {
	return &S3Store{
		bucket:     bucket,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}
}

// NewS3Store returns an S3Store for bucket. The client does not retry and
// gives up connecting after five seconds.
func NewS3Store(cfg aws.Config, bucket string) *S3Store {
	return NewS3StoreWithClient(NewS3Client(cfg), bucket)
}
