// Package backup uploads export blobs to an S3-compatible object store so
// a vault snapshot survives loss of the local machine. The blob is already
// encrypted under the export password before it reaches this package.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/securevault/internal/server/config"
)

// Test seams: the S3 client constructors and calls are indirected through
// package variables so tests can stub them without a live endpoint.
var (
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Uploader writes export blobs into the configured bucket.
type Uploader struct {
	config *config.Config
}

func NewUploader(cfg *config.Config) *Uploader {
	return &Uploader{config: cfg}
}

// Enabled reports whether an S3 target is configured.
func (u *Uploader) Enabled() bool {
	return u.config.S3BaseEndpoint != "" && u.config.S3Bucket != ""
}

func (u *Uploader) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(u.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.config.S3RootUser,
			u.config.S3RootPassword,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return client, nil
}

// Upload stores the export blob under key and returns a presigned GET URL
// for retrieval, valid for 15 minutes.
func (u *Uploader) Upload(ctx context.Context, key string, blob []byte) (string, error) {
	client, err := u.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := u.config.S3Bucket

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob),
		ContentType: aws.String("application/octet-stream"),
	}); err != nil {
		return "", fmt.Errorf("put backup object: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign backup object: %w", err)
	}

	return req.URL, nil
}
