package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenhealth/media-asset-service/utils"
)

// ExternalPrefix tags object keys of reference-only assets. Keys under it
// have no managed backend object; refresh and delete must fail fast.
const ExternalPrefix = "external-videos/"

// Bucket-relative logical folders for each asset class.
const (
	FolderVideos     = "videos"
	FolderBlogAudio  = "blog-audio"
	FolderDocuments  = "publications/files"
	FolderCovers     = "publications/covers"
	FolderThumbnails = "video-thumbnails"
)

// ObjectBackend is the injected storage client. The production
// implementation wraps MinIO; tests substitute a fake.
type ObjectBackend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, partSize uint64) (int64, error)
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Presign(ctx context.Context, key string, expiry time.Duration) (*url.URL, error)
}

// Source is one upload payload, spooled either in memory or to a temp file.
type Source struct {
	Name        string
	ContentType string
	Size        int64
	Buffer      []byte
	TempPath    string
}

// InMemory reports whether the payload is fully resident in memory.
func (s *Source) InMemory() bool {
	return s.Buffer != nil
}

// Cleanup removes the temp file backing the source, if any. It is safe to
// call more than once.
func (s *Source) Cleanup() error {
	if s.TempPath == "" {
		return nil
	}
	err := os.Remove(s.TempPath)
	s.TempPath = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// TransferResult describes one completed transfer into the bucket.
type TransferResult struct {
	Key         string
	PublicURL   string
	Size        int64
	ContentType string
	Streamed    bool
}

// Adapter streams payloads into the object-storage backend. It owns path
// selection (buffered vs streamed), the transfer deadline, failure
// classification and temp-resource cleanup.
type Adapter struct {
	backend         ObjectBackend
	publicBase      string
	bufferThreshold int64
	partSize        int64
	clock           utils.Clock
	tracer          trace.Tracer
}

func NewAdapter(backend ObjectBackend, publicBase string, bufferThreshold, partSize int64, clock utils.Clock) *Adapter {
	return &Adapter{
		backend:         backend,
		publicBase:      strings.TrimRight(publicBase, "/"),
		bufferThreshold: bufferThreshold,
		partSize:        partSize,
		clock:           clock,
		tracer:          otel.Tracer("storage"),
	}
}

// Transfer moves the source into the bucket under the given logical folder
// and returns the stable locator. Payloads at or below the buffer threshold
// go through the buffered path; larger ones are streamed in fixed-size
// parts so peak memory stays bounded. The deadline covers the whole
// transfer; the source's temp file is removed on every return path,
// deadline abort included.
func (a *Adapter) Transfer(ctx context.Context, src *Source, folder string, deadline time.Duration) (result *TransferResult, err error) {
	defer func() {
		if cleanupErr := src.Cleanup(); cleanupErr != nil && err == nil {
			err = fmt.Errorf("cleanup temp file: %w", cleanupErr)
		}
	}()

	if src.Size <= 0 {
		return nil, fmt.Errorf("source %q is empty", src.Name)
	}

	key := a.ObjectKey(folder, src.Name)
	contentType := src.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, span := a.tracer.Start(ctx, "storage.Transfer", trace.WithAttributes(
		attribute.String("object.key", key),
		attribute.Int64("object.size", src.Size),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	streamed := src.Size > a.bufferThreshold

	var reader io.Reader
	var partSize uint64
	if streamed {
		partSize = uint64(a.partSize)
		if src.InMemory() {
			reader = bytes.NewReader(src.Buffer)
		} else {
			file, openErr := os.Open(src.TempPath)
			if openErr != nil {
				return nil, fmt.Errorf("open temp file: %w", openErr)
			}
			defer file.Close()
			reader = file
		}
	} else {
		// Buffered path: the full payload is resident before the backend call.
		buf := src.Buffer
		if buf == nil {
			var readErr error
			buf, readErr = os.ReadFile(src.TempPath)
			if readErr != nil {
				return nil, fmt.Errorf("read temp file: %w", readErr)
			}
		}
		reader = bytes.NewReader(buf)
	}

	written, putErr := a.backend.Put(ctx, key, reader, src.Size, contentType, partSize)
	if putErr != nil {
		span.RecordError(putErr)
		return nil, classify(putErr, key, written)
	}

	return &TransferResult{
		Key:         key,
		PublicURL:   a.PublicURL(key),
		Size:        src.Size,
		ContentType: contentType,
		Streamed:    streamed,
	}, nil
}

// Delete removes a managed object. Deleting a key that does not exist is
// success. Keys under the external prefix are rejected without a backend
// call.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("empty object key: %w", ErrNotFound)
	}
	if IsExternalKey(key) {
		return fmt.Errorf("%s: %w", key, ErrExternalAsset)
	}

	if err := a.backend.Remove(ctx, key); err != nil {
		classified := classify(err, key, 0)
		if errors.Is(classified, ErrNotFound) {
			return nil
		}
		return classified
	}
	return nil
}

// PublicURL returns the stable, non-expiring locator for a key.
func (a *Adapter) PublicURL(key string) string {
	return a.publicBase + "/" + key
}

// ObjectKey builds the bucket-relative key: {folder}/{epochMillis}_{name}.
func (a *Adapter) ObjectKey(folder, name string) string {
	return fmt.Sprintf("%s/%d_%s", folder, a.clock.Now().UnixMilli(), SanitizeFileName(name))
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9._-].
func SanitizeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// IsExternalKey reports whether the key points at externally hosted content.
func IsExternalKey(key string) bool {
	return strings.HasPrefix(key, ExternalPrefix)
}

// ExternalKey builds a reference-only key for an external URL so the asset
// record stays consistent with managed keys.
func ExternalKey(rawURL string, clock utils.Clock) string {
	name := "video"
	if parsed, err := url.Parse(rawURL); err == nil {
		if base := strings.TrimSpace(lastPathSegment(parsed.Path)); base != "" {
			name = base
		}
	}
	return fmt.Sprintf("%s%d_%s", ExternalPrefix, clock.Now().UnixMilli(), SanitizeFileName(name))
}

func lastPathSegment(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	return parts[len(parts)-1]
}
