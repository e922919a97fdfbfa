package backup

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securevault/internal/server/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000/"
	cfg.S3Bucket = "backups"
	cfg.S3RootUser = "admin"
	cfg.S3RootPassword = "password"
	return cfg
}

func TestUploader_Enabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	assert.False(t, NewUploader(cfg).Enabled(), "no endpoint, disabled")

	assert.True(t, NewUploader(testConfig()).Enabled())
}

func TestUploader_Upload(t *testing.T) {
	origPut, origPresign := putObject, presignGetObject
	t.Cleanup(func() { putObject, presignGetObject = origPut, origPresign })

	var gotKey string
	var gotBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotKey = aws.ToString(in.Key)
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		gotBody = b
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://example.com/presigned"}, nil
	}

	u := NewUploader(testConfig())
	url, err := u.Upload(context.Background(), "export-1", []byte("blob"))
	require.NoError(t, err)

	assert.Equal(t, "export-1", gotKey)
	assert.Equal(t, []byte("blob"), gotBody)
	assert.Equal(t, "http://example.com/presigned", url)
}

func TestUploader_UploadPutError(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("boom")
	}

	u := NewUploader(testConfig())
	_, err := u.Upload(context.Background(), "export-1", []byte("blob"))
	assert.Error(t, err)
}

func TestUploader_UploadPresignError(t *testing.T) {
	origPut, origPresign := putObject, presignGetObject
	t.Cleanup(func() { putObject, presignGetObject = origPut, origPresign })

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}

	u := NewUploader(testConfig())
	_, err := u.Upload(context.Background(), "export-1", []byte("blob"))
	assert.Error(t, err)
}
