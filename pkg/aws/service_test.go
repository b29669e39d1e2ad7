package aws_test

import (
	"testing"
	"time"

	iaws "github.com/storacha/resume-converter/pkg/aws"
	"github.com/stretchr/testify/require"
)

func setConversionEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("AWS_S3_BUCKET", "resumes-bucket")
	t.Setenv("RESUME_DIRECTORY", "resumes/")
	t.Setenv("OUTPUT_DIRECTORY_S3", "converted/")
	t.Setenv("SCRATCH_DIR", "")
	t.Setenv("CONVERTED_URL_EXPIRY", "")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("SENTRY_DSN_PARAMETER", "")
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setConversionEnv(t)
		cfg := iaws.FromEnv(t.Context())
		require.Equal(t, "resumes-bucket", cfg.Bucket)
		require.Equal(t, "resumes/", cfg.SourcePrefix)
		require.Equal(t, "converted/", cfg.DestinationPrefix)
		require.NotEmpty(t, cfg.ScratchDir)
		require.Zero(t, cfg.URLExpiry)
		require.Equal(t, "us-west-2", cfg.Region)

		svc, err := iaws.Construct(cfg)
		require.NoError(t, err)
		require.NotNil(t, svc)
	})

	t.Run("url expiry", func(t *testing.T) {
		setConversionEnv(t)
		t.Setenv("CONVERTED_URL_EXPIRY", "15m")
		t.Setenv("SCRATCH_DIR", "/mnt/scratch")
		cfg := iaws.FromEnv(t.Context())
		require.Equal(t, 15*time.Minute, cfg.URLExpiry)
		require.Equal(t, "/mnt/scratch", cfg.ScratchDir)
	})

	t.Run("optional integrations", func(t *testing.T) {
		setConversionEnv(t)
		t.Setenv("CONVERSION_TABLE_NAME", "conversions")
		t.Setenv("CONVERSION_TOPIC_ARN", "arn:aws:sns:us-west-2:000000000000:converted")
		cfg := iaws.FromEnv(t.Context())
		require.Equal(t, "conversions", cfg.ConversionTableName)

		svc, err := iaws.Construct(cfg)
		require.NoError(t, err)
		require.NotNil(t, svc)
	})

	t.Run("missing bucket", func(t *testing.T) {
		setConversionEnv(t)
		t.Setenv("AWS_S3_BUCKET", "")
		require.Panics(t, func() { iaws.FromEnv(t.Context()) })
	})

	t.Run("bad url expiry", func(t *testing.T) {
		setConversionEnv(t)
		t.Setenv("CONVERTED_URL_EXPIRY", "forever")
		require.Panics(t, func() { iaws.FromEnv(t.Context()) })
	})

	t.Run("negative url expiry", func(t *testing.T) {
		setConversionEnv(t)
		t.Setenv("CONVERTED_URL_EXPIRY", "-1h")
		require.Panics(t, func() { iaws.FromEnv(t.Context()) })
	})
}
