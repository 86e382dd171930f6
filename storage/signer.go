package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenhealth/media-asset-service/utils"
)

// DefaultSignedURLWindow is how long an issued read URL stays valid.
const DefaultSignedURLWindow = 7 * 24 * time.Hour

// SignedURL is a time-limited read locator for a managed object.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// Signer mints presigned read URLs for managed objects. Refreshing
// reissues only the signed locator; the object key, public locator and
// bytes are never touched.
type Signer struct {
	backend ObjectBackend
	window  time.Duration
	clock   utils.Clock
}

func NewSigner(backend ObjectBackend, window time.Duration, clock utils.Clock) *Signer {
	if window <= 0 {
		window = DefaultSignedURLWindow
	}
	return &Signer{backend: backend, window: window, clock: clock}
}

// Window returns the issuance window the signer applies by default.
func (s *Signer) Window() time.Duration {
	return s.window
}

// Issue mints a read-only URL valid for exactly the given window
// (the signer default when zero). The returned expiry is the issue
// instant plus the window, so it is always strictly in the future.
func (s *Signer) Issue(ctx context.Context, key string, window time.Duration) (*SignedURL, error) {
	if key == "" {
		return nil, fmt.Errorf("empty object key: %w", ErrNotFound)
	}
	if window <= 0 {
		window = s.window
	}

	issuedAt := s.clock.Now()
	signed, err := s.backend.Presign(ctx, key, window)
	if err != nil {
		return nil, classify(err, key, 0)
	}

	return &SignedURL{
		URL:       signed.String(),
		ExpiresAt: issuedAt.Add(window),
	}, nil
}

// Refresh reissues the signed locator for an existing managed object.
// Keys under the external prefix fail with ErrExternalAsset before any
// backend call; a missing object fails with ErrNotFound.
func (s *Signer) Refresh(ctx context.Context, key string) (*SignedURL, error) {
	if key == "" {
		return nil, fmt.Errorf("empty object key: %w", ErrNotFound)
	}
	if IsExternalKey(key) {
		return nil, fmt.Errorf("%s: %w", key, ErrExternalAsset)
	}

	exists, err := s.backend.Exists(ctx, key)
	if err != nil {
		return nil, classify(err, key, 0)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return s.Issue(ctx, key, 0)
}
