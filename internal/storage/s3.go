package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jeraldtan21/cts/internal/config"
)

// s3Deleter is the part of the S3 client the store uses directly.
type s3Deleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store keeps images in a bucket under <prefix>/uploads/<category>/.
// When a public base URL is configured references are full URLs, otherwise
// they are object keys.
type S3Store struct {
	client   s3Deleter
	uploader s3Uploader
	bucket   string
	prefix   string
	baseURL  string
}

// NewS3Store builds the client from the default AWS chain, overridden by
// static keys, region and endpoint from cfg when set.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return newS3Store(client, manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix, cfg.PublicBaseURL), nil
}

func newS3Store(client s3Deleter, uploader s3Uploader, bucket, prefix, baseURL string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, category string, img Image) (string, error) {
	if err := validCategory(category); err != nil {
		return "", err
	}

	key := path.Join(s.prefix, uploadsDir, category, newName(img))
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFor(ref)
	if err != nil {
		return err
	}

	// S3 reports success for keys that do not exist.
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// keyFor maps a reference returned by Save back to its object key.
func (s *S3Store) keyFor(ref string) (string, error) {
	key := ref
	if s.baseURL != "" {
		key = strings.TrimPrefix(key, s.baseURL+"/")
	}
	key = strings.TrimPrefix(key, "/")

	rel := key
	if s.prefix != "" {
		if !strings.HasPrefix(key, s.prefix+"/") {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
		}
		rel = strings.TrimPrefix(key, s.prefix+"/")
	}
	if _, err := cleanRef(rel); err != nil || path.Clean(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
	}
	return key, nil
}
