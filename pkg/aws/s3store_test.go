package aws_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/storacha/resume-converter/internal/testutil"
	iaws "github.com/storacha/resume-converter/pkg/aws"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestS3Store(t *testing.T) {
	if os.Getenv("CI") != "" && runtime.GOOS != "linux" {
		t.SkipNow()
	}

	endpoint := testutil.CreateS3(t)
	client := testutil.NewS3Client(t, endpoint)

	bucketName := testutil.RandomName(t, 16)
	testutil.CreateBucket(t, client, bucketName)

	st := iaws.NewS3StoreWithClient(client, bucketName)

	t.Run("upload then download", func(t *testing.T) {
		dir := t.TempDir()
		data := testutil.RandomBytes(t, 256)
		src := filepath.Join(dir, "resume.pdf")
		require.NoError(t, os.WriteFile(src, data, 0o644))

		key := "converted/" + testutil.RandomName(t, 4) + ".pdf"
		err := st.Upload(t.Context(), src, key)
		require.NoError(t, err)

		head, err := client.HeadObject(t.Context(), &s3.HeadObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
		})
		require.NoError(t, err)
		require.Equal(t, "application/pdf", aws.ToString(head.ContentType))

		dst := filepath.Join(dir, "downloaded.pdf")
		err = st.Download(t.Context(), key, dst)
		require.NoError(t, err)
		require.Equal(t, data, testutil.Must(os.ReadFile(dst))(t))
	})

	t.Run("missing key", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "missing.txt")
		err := st.Download(t.Context(), "resumes/"+testutil.RandomName(t, 4)+".txt", dst)
		require.ErrorIs(t, err, types.ErrKeyNotFound)

		_, statErr := os.Stat(dst)
		require.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing local file", func(t *testing.T) {
		err := st.Upload(t.Context(), filepath.Join(t.TempDir(), "nope.pdf"), "converted/nope.pdf")
		require.Error(t, err)
	})
}
