package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// S3Config configures the S3-compatible document bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Bucket hands out blobs stored as objects in one bucket.
type S3Bucket struct {
	client     *minio.Client
	bucketName string
	region     string
	mu    sync.Mutex
	ready bool
}

func NewS3Bucket(cfg S3Config) (*S3Bucket, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Bucket{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

// ensureBucket creates the bucket on first use. Failures are not cached, so
// a later call retries.
func (s *S3Bucket) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return err
		}
	}
	s.ready = true
	return nil
}

// Blob returns the object at key.
func (s *S3Bucket) Blob(key string) Blob {
	return &s3Blob{bucket: s, key: strings.TrimPrefix(key, "/")}
}

type s3Blob struct {
	bucket *S3Bucket
	key    string
}

func (b *s3Blob) Name() string { return "s3://" + b.bucket.bucketName + "/" + b.key }

func (b *s3Blob) Read(ctx context.Context) ([]byte, error) {
	if err := b.bucket.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	obj, err := b.bucket.client.GetObject(ctx, b.bucket.bucketName, b.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", b.key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("get object %s: %w", b.key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read object %s: %w", b.key, err)
	}
	return data, nil
}

func (b *s3Blob) Write(ctx context.Context, data []byte) error {
	if err := b.bucket.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	contentType := "application/octet-stream"
	if strings.HasSuffix(strings.ToLower(b.key), ".docx") {
		contentType = docxContentType
	}
	_, err := b.bucket.client.PutObject(ctx, b.bucket.bucketName, b.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", b.key, err)
	}
	return nil
}
