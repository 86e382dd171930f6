package upload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenhealth/media-asset-service/storage"
)

func TestProbeDurationSkipsSpooledPayload(t *testing.T) {
	src := &storage.Source{Name: "movie.mp4", Size: 4096, TempPath: "/tmp/spooled"}
	assert.Equal(t, int64(120), ProbeDuration(context.Background(), src, 120))
}

func TestProbeDurationSkipsOversizePayload(t *testing.T) {
	src := &storage.Source{Name: "movie.mp4", Size: maxProbeSize + 1, Buffer: []byte{0}}
	assert.Equal(t, int64(90), ProbeDuration(context.Background(), src, 90))
}

func TestProbeDurationFallsBackOnGarbage(t *testing.T) {
	src := &storage.Source{Name: "movie.mp4", Size: 16, Buffer: []byte("not an mp4 file!")}
	assert.Equal(t, int64(42), ProbeDuration(context.Background(), src, 42))
}

func TestProbeDurationClampsNegativeFallback(t *testing.T) {
	src := &storage.Source{Name: "movie.mp4", Size: 16, Buffer: []byte("not an mp4 file!")}
	assert.Equal(t, int64(0), ProbeDuration(context.Background(), src, -5))
}
