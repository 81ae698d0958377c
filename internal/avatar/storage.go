package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go-blog-app/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage persists downloaded avatar images. Keys are slash-separated paths of
// the form "<resource_path>/avatar/<file>".
type Storage interface {
	// Write stores body under key and returns the location users should see.
	Write(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Remove deletes key. A missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// NewStorage builds the Storage selected by cfg.Storage.
func NewStorage(ctx context.Context, cfg config.AvatarConfig) (Storage, error) {
	switch strings.ToLower(cfg.Storage) {
	case "", "local":
		return LocalStorage{}, nil
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown avatar storage %q", cfg.Storage)
	}
}

// LocalStorage writes avatars to the filesystem relative to the working directory.
type LocalStorage struct{}

func (LocalStorage) Write(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	p := filepath.FromSlash(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar directory: %w", err)
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	return key, nil
}

func (LocalStorage) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.FromSlash(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// s3API is the subset of the S3 client used by S3Storage.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage writes avatars to an S3 bucket.
type S3Storage struct {
	client s3API
	bucket string
	region string
	prefix string
}

// NewS3Storage loads the default AWS credential chain and returns a bucket-backed Storage.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("avatar s3 storage requires a bucket")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newS3Storage(s3.NewFromConfig(awsCfg), cfg.Bucket, awsCfg.Region, cfg.Prefix), nil
}

func newS3Storage(client s3API, bucket, region, prefix string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, region: region, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Storage) Write(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey), nil
}

func (s *S3Storage) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
