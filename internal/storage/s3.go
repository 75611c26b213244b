package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/flexprice/invoicegen/internal/cache"
	"github.com/flexprice/invoicegen/internal/config"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
	// presignCacheMargin keeps a cached URL from being handed out right before it expires
	presignCacheMargin = 30 * time.Second
)

type s3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    config.S3Config
	expiry    time.Duration
	cache     cache.Cache
	logger    *logger.Logger
}

// NewS3Store creates a document store backed by a single bucket. Presigned
// URLs are cached for slightly less than their lifetime when c is not nil.
func NewS3Store(client *s3.Client, cfg config.S3Config, expiry time.Duration, c cache.Cache, log *logger.Logger) DocumentStore {
	if expiry <= 0 {
		expiry = defaultPresignExpiryDuration
	}
	return &s3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    cfg,
		expiry:    expiry,
		cache:     c,
		logger:    log,
	}
}

func (s *s3Store) objectKey(key string) string {
	if s.config.KeyPrefix != "" {
		return s.config.KeyPrefix + "/" + key
	}
	return key
}

func (s *s3Store) cacheKey(key string) string {
	return cache.GenerateKey(cache.PrefixPresignedURL, s.config.Bucket, s.objectKey(key))
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

func (s *s3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ierr.WithError(err).WithHint("failed to upload document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, s.objectKey(key)).
			Mark(ierr.ErrHTTPClient)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, s.cacheKey(key))
	}
	return nil
}

func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ierr.WithError(err).WithHint("document not found").
				WithReportableDetails(map[string]any{"key": key}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("failed to get document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, s.objectKey(key)).
			Mark(ierr.ErrHTTPClient)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to read document").
			Mark(ierr.ErrHTTPClient)
	}
	return data, nil
}

func (s *s3Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, ierr.WithError(err).WithHint("failed to check if document exists").
			Mark(ierr.ErrHTTPClient)
	}
	return true, nil
}

func (s *s3Store) CanPresign() bool {
	return true
}

func (s *s3Store) PresignedURL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	cacheKey := s.cacheKey(key)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			if url, ok := cached.(string); ok {
				return url, nil
			}
		}
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, s.objectKey(key)).
			Mark(ierr.ErrHTTPClient)
	}

	if s.cache != nil && s.expiry > presignCacheMargin {
		s.cache.Set(ctx, cacheKey, result.URL, s.expiry-presignCacheMargin)
	}
	return result.URL, nil
}
