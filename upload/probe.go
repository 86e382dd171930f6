package upload

import (
	"bytes"
	"context"
	"time"

	"github.com/abema/go-mp4"

	"github.com/lumenhealth/media-asset-service/config"
	"github.com/lumenhealth/media-asset-service/storage"
)

const (
	// maxProbeSize bounds how large an in-memory payload the probe will
	// touch; anything above is skipped to protect memory during upload.
	maxProbeSize = 500 * config.MiB

	probeTimeout = 30 * time.Second
)

// ProbeDuration extracts the media duration in whole seconds. The probe
// runs only when the payload is fully in memory and at most maxProbeSize;
// otherwise, and on any internal failure or timeout, it returns the
// fallback. The result is never negative.
func ProbeDuration(ctx context.Context, src *storage.Source, fallback int64) int64 {
	if fallback < 0 {
		fallback = 0
	}
	if !src.InMemory() || src.Size > maxProbeSize {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	type probeOutcome struct {
		seconds int64
		ok      bool
	}
	done := make(chan probeOutcome, 1)
	go func() {
		info, err := mp4.Probe(bytes.NewReader(src.Buffer))
		if err != nil || info.Timescale == 0 {
			done <- probeOutcome{}
			return
		}
		seconds := int64(info.Duration / uint64(info.Timescale))
		done <- probeOutcome{seconds: seconds, ok: true}
	}()

	select {
	case <-ctx.Done():
		return fallback
	case outcome := <-done:
		if !outcome.ok || outcome.seconds < 0 {
			return fallback
		}
		return outcome.seconds
	}
}
