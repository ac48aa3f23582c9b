package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"drs/internal/streaming"
)

// S3Options configures the object-store backend. Endpoint may point at any
// S3-compatible service, including MinIO.
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseHTTPS  bool
}

// S3 stores object bytes in an S3-compatible bucket.
//
// Sub-range reads are a documented limitation of this backend: Stream fails
// with ErrNotImplemented when asked for anything but the whole object.
type S3 struct {
	bucket   string
	client   *s3.S3
	uploader *s3manager.Uploader
}

// NewS3 builds the object-store backend from opts.
func NewS3(opts S3Options) (*S3, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg := &aws.Config{
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(!opts.UseHTTPS),
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	client := s3.New(sess)
	return &S3{
		bucket:   opts.Bucket,
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
// Intended for first boot against a fresh MinIO deployment.
func (b *S3) EnsureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchBucket, "NotFound":
			_, err = b.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
			return err
		}
	}
	return err
}

// Save uploads the file at sourcePath under targetName and returns the
// canonical s3://bucket/key location.
func (b *S3) Save(ctx context.Context, sourcePath, targetName string) (string, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, err = b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(targetName),
		Body:   f,
	})
	if err != nil {
		return "", err
	}
	return S3Location(b.bucket, targetName), nil
}

// Delete removes the object whose key is derived from location.
func (b *S3) Delete(ctx context.Context, location string) error {
	key, err := ObjectKey(location)
	if err != nil {
		return err
	}
	_, err = b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Stream returns the full object body. Range requests are not supported by
// this backend.
func (b *S3) Stream(ctx context.Context, location string, rng *streaming.ByteRange) (io.ReadCloser, error) {
	if rng != nil {
		return nil, ErrNotImplemented
	}

	key, err := ObjectKey(location)
	if err != nil {
		return nil, err
	}
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
