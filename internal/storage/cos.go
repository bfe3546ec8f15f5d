package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tencentyun/cos-go-sdk-v5"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
)

// COSStore reads blobs from a Tencent Cloud Object Storage bucket.
// Credentials come from the COS_SECRETID and COS_SECRETKEY environment
// variables unless overridden. Downloads are retried with a fixed delay;
// missing objects are not retried.
type COSStore struct {
	client   *cos.Client
	attempts uint
}

// COSOption configures a COSStore.
type COSOption func(*cosOptions)

type cosOptions struct {
	secretID  string
	secretKey string
	timeout   time.Duration
	attempts  uint
}

// WithCredentials overrides the environment-provided COS credentials.
func WithCredentials(secretID, secretKey string) COSOption {
	return func(o *cosOptions) {
		o.secretID = secretID
		o.secretKey = secretKey
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) COSOption {
	return func(o *cosOptions) {
		o.timeout = timeout
	}
}

// WithAttempts sets how many times a failed download is attempted.
func WithAttempts(attempts uint) COSOption {
	return func(o *cosOptions) {
		o.attempts = attempts
	}
}

// NewCOSStore creates a store over the given bucket URL, e.g.
// "https://bucket.cos.region.myqcloud.com".
func NewCOSStore(bucketURL string, opts ...COSOption) (*COSStore, error) {
	options := &cosOptions{
		secretID:  os.Getenv("COS_SECRETID"),
		secretKey: os.Getenv("COS_SECRETKEY"),
		timeout:   defaultTimeout,
		attempts:  defaultAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bucket URL %q: %w", bucketURL, err)
	}

	httpClient := &http.Client{
		Timeout: options.timeout,
		Transport: &cos.AuthorizationTransport{
			SecretID:  options.secretID,
			SecretKey: options.secretKey,
		},
	}

	return &COSStore{
		client:   cos.NewClient(&cos.BaseURL{BucketURL: u}, httpClient),
		attempts: options.attempts,
	}, nil
}

// Get downloads the object at key, retrying transient failures.
func (s *COSStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			resp, err := s.client.Object.Get(ctx, key, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			data = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(time.Second),
		retry.RetryIf(func(err error) bool {
			return !cos.IsNotFoundError(err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}
	return data, nil
}

// List returns the keys of all objects under prefix, following result
// pagination.
func (s *COSStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	marker := ""
	for {
		result, _, err := s.client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix: prefix,
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, obj := range result.Contents {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated {
			return keys, nil
		}
		marker = result.NextMarker
	}
}
