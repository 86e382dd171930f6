package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/storage"
)

type fakeAssetStore struct {
	managed []entity.Asset
	listErr error

	updateErr map[uuid.UUID]error
	updated   map[uuid.UUID]storage.SignedURL
}

func (f *fakeAssetStore) FindManaged() ([]entity.Asset, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.managed, nil
}

func (f *fakeAssetStore) UpdateSignedURL(id uuid.UUID, signedURL string, expiresAt time.Time) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	if f.updated == nil {
		f.updated = map[uuid.UUID]storage.SignedURL{}
	}
	f.updated[id] = storage.SignedURL{URL: signedURL, ExpiresAt: expiresAt}
	return nil
}

type fakeRefresher struct {
	errs map[string]error
}

func (f *fakeRefresher) Refresh(ctx context.Context, key string) (*storage.SignedURL, error) {
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return &storage.SignedURL{
		URL:       "https://cdn.example.com/signed/" + key + "?sig=new",
		ExpiresAt: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}, nil
}

func managedAsset(key string) entity.Asset {
	return entity.Asset{ID: uuid.New(), FileName: key, Category: entity.CategoryVideo}
}

func TestRefreshSweepReplacesLocators(t *testing.T) {
	first := managedAsset("videos/1_a.mp4")
	second := managedAsset("videos/2_b.mp4")

	store := &fakeAssetStore{managed: []entity.Asset{first, second}}
	sweep := NewRefreshSweep(store, &fakeRefresher{}, nopLogger{})

	refreshed, failed := sweep.Run(context.Background())
	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 0, failed)

	require.Contains(t, store.updated, first.ID)
	assert.Equal(t, "https://cdn.example.com/signed/videos/1_a.mp4?sig=new", store.updated[first.ID].URL)
}

func TestRefreshSweepIsolatesAssetFailures(t *testing.T) {
	healthy := managedAsset("videos/1_a.mp4")
	missing := managedAsset("videos/2_gone.mp4")

	store := &fakeAssetStore{managed: []entity.Asset{missing, healthy}}
	refresher := &fakeRefresher{errs: map[string]error{
		missing.FileName: fmt.Errorf("%s: %w", missing.FileName, storage.ErrNotFound),
	}}
	sweep := NewRefreshSweep(store, refresher, nopLogger{})

	refreshed, failed := sweep.Run(context.Background())
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, 1, failed)
	assert.Contains(t, store.updated, healthy.ID)
	assert.NotContains(t, store.updated, missing.ID)
}

func TestRefreshSweepCountsSaveFailures(t *testing.T) {
	asset := managedAsset("videos/1_a.mp4")

	store := &fakeAssetStore{
		managed:   []entity.Asset{asset},
		updateErr: map[uuid.UUID]error{asset.ID: errors.New("db down")},
	}
	sweep := NewRefreshSweep(store, &fakeRefresher{}, nopLogger{})

	refreshed, failed := sweep.Run(context.Background())
	assert.Equal(t, 0, refreshed)
	assert.Equal(t, 1, failed)
}

func TestRefreshSweepEmptySet(t *testing.T) {
	sweep := NewRefreshSweep(&fakeAssetStore{}, &fakeRefresher{}, nopLogger{})
	refreshed, failed := sweep.Run(context.Background())
	assert.Equal(t, 0, refreshed)
	assert.Equal(t, 0, failed)
}
