package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNotFound marks a referenced object or entity that is absent.
	ErrNotFound = errors.New("object not found")

	// ErrExternalAsset marks an operation against a reference-only asset
	// that has no managed backend object.
	ErrExternalAsset = errors.New("asset is externally hosted")
)

// TransferKind is the closed set of transfer failure classes. Callers
// match on the kind, never on message text.
type TransferKind int

const (
	KindUnknown TransferKind = iota
	KindTimeout
	KindNetworkLoss
	KindCapacityExceeded
	KindPermissionDenied
	KindRateLimited
)

func (k TransferKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetworkLoss:
		return "network_loss"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindPermissionDenied:
		return "permission_denied"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Retryable reports whether the caller may reasonably retry the transfer.
func (k TransferKind) Retryable() bool {
	switch k {
	case KindTimeout, KindNetworkLoss, KindCapacityExceeded, KindRateLimited:
		return true
	default:
		return false
	}
}

// TransferError is a classified transport failure with elapsed-size context.
type TransferError struct {
	Kind  TransferKind
	Key   string
	Bytes int64
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s failed (%s, %d bytes written): %v", e.Key, e.Kind, e.Bytes, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// AsTransferError extracts a classified transfer failure, if any.
func AsTransferError(err error) (*TransferError, bool) {
	var te *TransferError
	ok := errors.As(err, &te)
	return te, ok
}

// classify maps a raw backend failure to the closed taxonomy. Deadline
// expiry and OS-level connection errors are recognized through the error
// chain; everything the backend reports through an S3 error response is
// matched on its code, never on message text.
func classify(err error, key string, written int64) error {
	if err == nil {
		return nil
	}

	wrap := func(kind TransferKind) error {
		return &TransferError{Kind: kind, Key: key, Bytes: written, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return wrap(KindTimeout)
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return wrap(KindNetworkLoss)
	}
	if errors.Is(err, syscall.ETIMEDOUT) {
		return wrap(KindTimeout)
	}
	if errors.Is(err, syscall.ENOBUFS) {
		return wrap(KindCapacityExceeded)
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return wrap(KindPermissionDenied)
	case "SlowDown", "TooManyRequests":
		return wrap(KindRateLimited)
	case "EntityTooLarge":
		return wrap(KindCapacityExceeded)
	}
	switch resp.StatusCode {
	case http.StatusForbidden:
		return wrap(KindPermissionDenied)
	case http.StatusTooManyRequests:
		return wrap(KindRateLimited)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return wrap(KindUnknown)
}
