package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

type fakeBackend struct {
	putKey      string
	putSize     int64
	putPartSize uint64
	putData     []byte
	putErr      error

	removed   []string
	removeErr error

	exists    bool
	existsErr error

	presignCalls int
	presignErr   error
}

func (f *fakeBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, partSize uint64) (int64, error) {
	f.putKey = key
	f.putSize = size
	f.putPartSize = partSize
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.putData = data
	if f.putErr != nil {
		return int64(len(data) / 2), f.putErr
	}
	return size, nil
}

func (f *fakeBackend) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeBackend) Exists(ctx context.Context, key string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeBackend) Presign(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	f.presignCalls++
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return url.Parse("https://cdn.example.com/" + key + "?sig=abc")
}

func newTestAdapter(backend ObjectBackend) *Adapter {
	clock := fixedClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewAdapter(backend, "https://cdn.example.com/media", 1024, 256, clock)
}

func tempSource(t *testing.T, name string, size int) *Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return &Source{Name: name, ContentType: "video/mp4", Size: int64(size), TempPath: path}
}

func TestTransferBufferedPath(t *testing.T) {
	backend := &fakeBackend{}
	adapter := newTestAdapter(backend)

	src := &Source{Name: "clip.mp4", ContentType: "video/mp4", Size: 512, Buffer: make([]byte, 512)}
	result, err := adapter.Transfer(context.Background(), src, FolderVideos, time.Minute)
	require.NoError(t, err)

	assert.False(t, result.Streamed)
	assert.Equal(t, uint64(0), backend.putPartSize)
	assert.Len(t, backend.putData, 512)
	assert.Equal(t, "videos/1704067200000_clip.mp4", result.Key)
	assert.Equal(t, "https://cdn.example.com/media/videos/1704067200000_clip.mp4", result.PublicURL)
}

func TestTransferStreamedPath(t *testing.T) {
	backend := &fakeBackend{}
	adapter := newTestAdapter(backend)

	src := tempSource(t, "movie.mp4", 4096)
	tempPath := src.TempPath

	result, err := adapter.Transfer(context.Background(), src, FolderVideos, time.Minute)
	require.NoError(t, err)

	assert.True(t, result.Streamed)
	assert.Equal(t, uint64(256), backend.putPartSize)
	assert.Len(t, backend.putData, 4096)

	_, statErr := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(statErr), "temp file must be removed after a successful transfer")
}

func TestTransferCleansTempFileOnFailure(t *testing.T) {
	backend := &fakeBackend{putErr: syscall.ECONNRESET}
	adapter := newTestAdapter(backend)

	src := tempSource(t, "movie.mp4", 4096)
	tempPath := src.TempPath

	_, err := adapter.Transfer(context.Background(), src, FolderVideos, time.Minute)
	require.Error(t, err)

	te, ok := AsTransferError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetworkLoss, te.Kind)
	assert.True(t, te.Kind.Retryable())

	_, statErr := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(statErr), "temp file must be removed after a failed transfer")
}

func TestTransferDeadlineClassifiedAsTimeout(t *testing.T) {
	backend := &fakeBackend{putErr: context.DeadlineExceeded}
	adapter := newTestAdapter(backend)

	src := &Source{Name: "clip.mp4", ContentType: "video/mp4", Size: 512, Buffer: make([]byte, 512)}
	_, err := adapter.Transfer(context.Background(), src, FolderVideos, time.Minute)
	require.Error(t, err)

	te, ok := AsTransferError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, te.Kind)
}

func TestTransferRejectsEmptySource(t *testing.T) {
	adapter := newTestAdapter(&fakeBackend{})
	src := &Source{Name: "clip.mp4", ContentType: "video/mp4", Size: 0}
	_, err := adapter.Transfer(context.Background(), src, FolderVideos, time.Minute)
	assert.Error(t, err)
}

func TestDeleteMissingObjectIsSuccess(t *testing.T) {
	backend := &fakeBackend{removeErr: minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}}
	adapter := newTestAdapter(backend)

	err := adapter.Delete(context.Background(), "videos/123_gone.mp4")
	assert.NoError(t, err)
}

func TestDeleteExternalKeyRejected(t *testing.T) {
	backend := &fakeBackend{}
	adapter := newTestAdapter(backend)

	err := adapter.Delete(context.Background(), ExternalPrefix+"123_ref.mp4")
	assert.ErrorIs(t, err, ErrExternalAsset)
	assert.Empty(t, backend.removed, "no backend call for external assets")
}

func TestDeleteEmptyKey(t *testing.T) {
	adapter := newTestAdapter(&fakeBackend{})
	err := adapter.Delete(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "b_o_c_o_clip_1_.mp4", SanitizeFileName("b o/c\\o clip(1).mp4"))
	assert.Equal(t, "plain-name_v2.mp4", SanitizeFileName("plain-name_v2.mp4"))
}

func TestExternalKey(t *testing.T) {
	clock := fixedClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	key := ExternalKey("https://videos.example.com/library/intro.mp4?token=x", clock)
	assert.Equal(t, ExternalPrefix+"1704067200000_intro.mp4", key)
	assert.True(t, IsExternalKey(key))

	key = ExternalKey("https://videos.example.com/", clock)
	assert.Equal(t, ExternalPrefix+"1704067200000_video", key)
}

func TestClassifyBackendCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind TransferKind
	}{
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}, KindPermissionDenied},
		{"bad signature", minio.ErrorResponse{Code: "SignatureDoesNotMatch", StatusCode: 403}, KindPermissionDenied},
		{"slow down", minio.ErrorResponse{Code: "SlowDown", StatusCode: 503}, KindRateLimited},
		{"too many requests", minio.ErrorResponse{Code: "TooManyRequests", StatusCode: 429}, KindRateLimited},
		{"entity too large", minio.ErrorResponse{Code: "EntityTooLarge", StatusCode: 400}, KindCapacityExceeded},
		{"timed out", syscall.ETIMEDOUT, KindTimeout},
		{"no buffers", syscall.ENOBUFS, KindCapacityExceeded},
		{"broken pipe", syscall.EPIPE, KindNetworkLoss},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classify(tc.err, "videos/1_a.mp4", 42)
			te, ok := AsTransferError(classified)
			require.True(t, ok)
			assert.Equal(t, tc.kind, te.Kind)
			assert.Equal(t, int64(42), te.Bytes)
		})
	}
}

func TestClassifyNotFoundIsSentinel(t *testing.T) {
	classified := classify(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}, "videos/1_a.mp4", 0)
	assert.ErrorIs(t, classified, ErrNotFound)

	_, ok := AsTransferError(classified)
	assert.False(t, ok)
}
