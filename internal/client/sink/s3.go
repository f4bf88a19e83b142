package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

var ErrBucketNotFound = errors.New("bucket not found")

// S3Config configures the S3 client. Empty keys fall back to the default
// AWS credential chain; a BaseEndpoint (e.g. MinIO) switches to path-style
// addressing.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// PutObjectAPI is the part of *s3.Client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type S3Sink struct {
	client PutObjectAPI
	bucket string
	logger logging.Logger
}

func NewS3Sink(client PutObjectAPI, bucket string, logger logging.Logger) *S3Sink {
	if logger == nil {
		logger = logging.Discard()
	}
	return &S3Sink{client: client, bucket: bucket, logger: logger}
}

// Put uploads r as bucket/key. Streams that cannot seek are spooled to a
// temporary file first; request signing needs a rewindable body.
func (s *S3Sink) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	body, n, cleanup, err := seekable(r, size)
	if err != nil {
		return "", err
	}
	defer cleanup()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(n),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
			return "", fmt.Errorf("%w: %s", ErrBucketNotFound, s.bucket)
		}
		s.logger.Error(ctx, "put object failed", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	loc := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info(ctx, "object stored", "location", loc, "size", n)
	return loc, nil
}

func seekable(r io.Reader, size int64) (io.ReadSeeker, int64, func(), error) {
	if rs, ok := r.(io.ReadSeeker); ok && size >= 0 {
		return rs, size, func() {}, nil
	}

	tmp, err := os.CreateTemp("", "cloudbox-s3-*")
	if err != nil {
		return nil, 0, nil, fmt.Errorf("spool: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	n, err := io.Copy(tmp, &sizedReader{r: r, size: size})
	if err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("spool: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("spool: %w", err)
	}
	return tmp, n, cleanup, nil
}
