package blob

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultURLTTL = 15 * time.Minute

// GCSSigner issues V4 signed URLs against a Google Cloud Storage bucket.
type GCSSigner struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
}

// NewGCSSigner creates a signer for the named bucket. credentialsFile may be
// empty to fall back to application default credentials.
func NewGCSSigner(ctx context.Context, bucketName, credentialsFile string, ttl time.Duration) (*GCSSigner, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("blob: bucket name is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blob: failed to create storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultURLTTL
	}
	return &GCSSigner{client: client, bucket: bucketName, ttl: ttl}, nil
}

// IssueUploadURL returns a signed PUT URL. The content type is part of the
// signature, so the client must send it verbatim.
func (s *GCSSigner) IssueUploadURL(ctx context.Context, key, contentType string) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		Expires:     time.Now().Add(s.ttl),
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("blob: failed to sign upload URL for %q: %w", key, err)
	}
	return url, nil
}

// IssueDownloadURL returns a signed GET URL for an existing object.
func (s *GCSSigner) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("blob: failed to sign download URL for %q: %w", key, err)
	}
	return url, nil
}

// Close releases the underlying storage client.
func (s *GCSSigner) Close() error {
	return s.client.Close()
}
