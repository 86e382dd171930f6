package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenhealth/media-asset-service/entity"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(asset *entity.Asset) error {
	return r.db.Create(asset).Error
}

func (r *AssetRepository) FindByID(id uuid.UUID) (*entity.Asset, error) {
	var asset entity.Asset
	err := r.db.Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepository) FindByCategory(category entity.AssetCategory) ([]entity.Asset, error) {
	var assets []entity.Asset
	err := r.db.Where("category = ?", category).Order("created_at DESC").Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// FindManaged returns every asset whose bytes live in the managed bucket.
// External (reference-only) assets are excluded; the refresh sweep must
// never touch them.
func (r *AssetRepository) FindManaged() ([]entity.Asset, error) {
	var assets []entity.Asset
	err := r.db.Where("is_external = ?", false).Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateSignedURL replaces only the signed locator and its expiry.
func (r *AssetRepository) UpdateSignedURL(id uuid.UUID, signedURL string, expiresAt time.Time) error {
	return r.db.Model(&entity.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"signed_url":            signedURL,
			"signed_url_expires_at": expiresAt,
		}).Error
}

// IncrementViews bumps the view counter atomically. Only the public watch
// access pattern calls this; previews never do.
func (r *AssetRepository) IncrementViews(id uuid.UUID) error {
	return r.db.Model(&entity.Asset{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *AssetRepository) UpdatePinned(id uuid.UUID, pinned bool) error {
	return r.db.Model(&entity.Asset{}).Where("id = ?", id).Update("pinned", pinned).Error
}

func (r *AssetRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Asset{}, "id = ?", id).Error
}
