// Package blob is the narrow seam to the external object store. The engine
// only ever asks for time-limited capability URLs; bytes move out-of-band
// between the client and the store, never through this service.
package blob

import "context"

// Signer issues capability URLs for a storage key.
type Signer interface {
	// IssueUploadURL returns a write URL the caller PUTs the file bytes to.
	IssueUploadURL(ctx context.Context, key, contentType string) (string, error)
	// IssueDownloadURL returns a read URL for a previously uploaded key.
	IssueDownloadURL(ctx context.Context, key string) (string, error)
}
