package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	cfg "github.com/templui/postline/internal/config"
	"github.com/templui/postline/internal/staging"
)

// UploadResult describes an object accepted by the remote store.
type UploadResult struct {
	URL    string // Public URL of the object
	Name   string // Stored file name (unique, not the client's name)
	Key    string // Full object key, needed for out-of-band cleanup
	Status int    // HTTP status reported by the remote service
}

// MediaUploader uploads post media to remote object storage.
type MediaUploader interface {
	// Upload stores body under a unique name derived from fileName's extension.
	// It never retries; a non-success response is returned as an error.
	Upload(ctx context.Context, body io.ReadSeeker, fileName, contentType string) (*UploadResult, error)

	// Delete removes an object by key
	Delete(ctx context.Context, key string) error
}

// S3Storage implements MediaUploader for S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	prefix    string
	tag       string
	publicURL string // Base URL for generating media links
	timeout   time.Duration
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string // Optional: for S3-compatible services
	PublicURL string // Optional: CDN base URL in front of the bucket
	Prefix    string // Key prefix for post media
	Tag       string // Provenance tag value, stored as "source=<Tag>"
	Timeout   time.Duration
}

// New creates an S3-compatible storage instance from app config
func New(ctx context.Context, c *cfg.Config) (*S3Storage, error) {
	if c.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is not set")
	}

	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
		"public_url", c.S3PublicURL,
	)
	return NewS3Storage(ctx, S3Config{
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Endpoint:  c.S3Endpoint,
		PublicURL: c.S3PublicURL,
		Prefix:    c.UploadPrefix,
		Tag:       c.UploadTag,
		Timeout:   c.UploadTimeout,
	})
}

// NewS3Storage creates a new S3 storage instance and makes sure the bucket exists
func NewS3Storage(ctx context.Context, sc S3Config) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(sc.Region))

	// Add static credentials if provided
	if sc.AccessKey != "" && sc.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Uploads are billed and rate limited remotely: one attempt only.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.Retryer = aws.NopRetryer{}
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		}
	})

	publicURL := sc.PublicURL
	switch {
	case publicURL != "":
		publicURL = strings.TrimSuffix(publicURL, "/")
	case sc.Endpoint != "":
		publicURL = strings.TrimSuffix(sc.Endpoint, "/") + "/" + sc.Bucket
	default:
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", sc.Bucket, sc.Region)
	}

	timeout := sc.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	storage := &S3Storage{
		client:    client,
		bucket:    sc.Bucket,
		prefix:    strings.Trim(sc.Prefix, "/"),
		tag:       sc.Tag,
		publicURL: publicURL,
		timeout:   timeout,
	}

	if err := storage.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return storage, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

// Upload stores body under <prefix>/<uuid><ext>, tagged with the provenance tag.
func (s *S3Storage) Upload(ctx context.Context, body io.ReadSeeker, fileName, contentType string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name := uuid.New().String() + staging.SanitizeExt(path.Ext(fileName))
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Tagging:     aws.String(url.Values{"source": {s.tag}}.Encode()),
		Metadata: map[string]string{
			"uploaded-by":   s.tag,
			"original-name": url.QueryEscape(path.Base(fileName)),
		},
	})
	if err != nil {
		return nil, &RemoteError{Status: statusOf(err), Err: err}
	}

	return &UploadResult{
		URL:    s.URL(key),
		Name:   name,
		Key:    key,
		Status: http.StatusOK,
	}, nil
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// URL returns the public URL for an object key
func (s *S3Storage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// RemoteError is a failed call to the object store. Status is 0 when no
// HTTP response was received.
type RemoteError struct {
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to upload to S3: %v", e.Err)
	}
	return fmt.Sprintf("failed to upload to S3 (status %d): %v", e.Status, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// statusOf extracts the HTTP status from SDK response errors
// (awshttp.ResponseError and the S3 wrapper around it).
func statusOf(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
