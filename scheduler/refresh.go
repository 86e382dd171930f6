package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/storage"
)

type AssetStore interface {
	FindManaged() ([]entity.Asset, error)
	UpdateSignedURL(id uuid.UUID, signedURL string, expiresAt time.Time) error
}

type Refresher interface {
	Refresh(ctx context.Context, key string) (*storage.SignedURL, error)
}

// RefreshSweep reissues signed URLs for every managed asset before the
// previous ones lapse. External assets never enter the batch; the store
// filters them out.
type RefreshSweep struct {
	assets AssetStore
	signer Refresher
	logger Logger
}

func NewRefreshSweep(assets AssetStore, signer Refresher, logger Logger) *RefreshSweep {
	return &RefreshSweep{
		assets: assets,
		signer: signer,
		logger: logger,
	}
}

// Run refreshes the whole managed set, isolating per-asset failures, and
// reports how many locators it replaced and how many assets failed.
func (s *RefreshSweep) Run(ctx context.Context) (refreshed, failed int) {
	assets, err := s.assets.FindManaged()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "refresh sweep: listing managed assets failed")
		return 0, 0
	}
	if len(assets) == 0 {
		return 0, 0
	}

	for _, asset := range assets {
		signed, err := s.signer.Refresh(ctx, asset.FileName)
		if err != nil {
			failed++
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.WarningWithContextf(ctx, "refresh sweep: asset %s has no object %q", asset.ID, asset.FileName)
			} else {
				s.logger.ErrorWithContextf(ctx, err, "refresh sweep: asset %s failed", asset.ID)
			}
			continue
		}

		if err := s.assets.UpdateSignedURL(asset.ID, signed.URL, signed.ExpiresAt); err != nil {
			failed++
			s.logger.ErrorWithContextf(ctx, err, "refresh sweep: saving locator for asset %s failed", asset.ID)
			continue
		}
		refreshed++
	}

	s.logger.InfoWithContextf(ctx, "refresh sweep finished: %d refreshed, %d failed of %d managed", refreshed, failed, len(assets))
	return refreshed, failed
}
