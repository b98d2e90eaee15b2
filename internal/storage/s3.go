package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps audio as <prefix><id>.mp3 objects in an S3-compatible bucket
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// S3Options configures NewS3Store
type S3Options struct {
	Endpoint     string // empty for AWS; set for MinIO/LocalStack/R2
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Prefix       string
	UsePathStyle bool
}

// NewS3Store creates a new S3 audio store
func NewS3Store(opts S3Options) (*S3Store, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	// Static credentials when given; otherwise the default AWS chain (env, profile, role).
	if opts.AccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.Endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(opts.Endpoint))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Disable automatic request checksums and response validation so S3-compatible
	// backends (e.g. Cloudflare R2) that don't fully support CRC32 headers work correctly.
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", opts.Endpoint).
		Str("bucket", opts.Bucket).
		Str("prefix", opts.Prefix).
		Msg("S3 audio store initialized")

	return newS3Store(client, opts.Bucket, opts.Prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a story id.
func (s *S3Store) Key(id string) string {
	return s.prefix + id + AudioExt
}

// Save uploads r as the audio for id. The body is buffered because
// S3-compatible backends (e.g. R2) require the Content-Length header.
func (s *S3Store) Save(ctx context.Context, id string, r io.Reader) error {
	if !ValidID(id) {
		return fmt.Errorf("invalid story id %q", id)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read audio stream: %w", err)
	}

	key := s.Key(id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("audio/mpeg"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("size_bytes", len(data)).
		Msg("Audio uploaded to S3")

	return nil
}

// Open retrieves the audio for id, or ErrNotFound.
func (s *S3Store) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(id)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return result.Body, nil
}
