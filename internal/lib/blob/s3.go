package blob

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/pkg/errors"
)

// S3Store keeps blobs in a single bucket; keys map directly to object keys.
// Credentials are the configured static pair, or the default AWS chain.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 storage requires a bucket")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Driver() string { return "s3" }

// Put emulates create-only with a HEAD first. The race between HEAD and PUT
// is harmless since keys embed a fresh UUID.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	key, err := validateKey(key)
	if err != nil {
		return 0, err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err == nil {
		return 0, errors.Wrap(ErrExists, key)
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: counter}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, errors.Wrap(err, "putting s3 object")
	}

	return counter.n, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, errors.Wrap(ErrNotFound, key)
		}
		return nil, errors.Wrap(err, "getting s3 object")
	}
	return out.Body, nil
}

// Delete relies on DeleteObject being idempotent in S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return errors.Wrap(err, "deleting s3 object")
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
