package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssetCategory string

const (
	CategoryVideo    AssetCategory = "video"
	CategoryAudio    AssetCategory = "audio"
	CategoryDocument AssetCategory = "document"
	CategoryImage    AssetCategory = "image"
)

type AssetStatus string

const (
	AssetPublished   AssetStatus = "published"
	AssetUnpublished AssetStatus = "unpublished"
)

// Asset is one binary object managed in the storage bucket, or a
// reference to an externally hosted file when IsExternal is set.
type Asset struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string        `json:"title" gorm:"type:varchar(200);not null"`
	Description   string        `json:"description" gorm:"type:text"`
	Transcription string        `json:"transcription" gorm:"type:text"`
	Category      AssetCategory `json:"category" gorm:"type:varchar(16);not null;index"`

	// FileName is the bucket-relative object key, stable once assigned.
	FileName    string `json:"file_name" gorm:"type:varchar(1024);not null"`
	PublicURL   string `json:"public_url" gorm:"type:varchar(1024);not null"`
	ContentType string `json:"content_type" gorm:"type:varchar(255)"`
	FileSize    int64  `json:"file_size" gorm:"not null"`

	SignedURL          string    `json:"signed_url" gorm:"type:varchar(2048)"`
	SignedURLExpiresAt time.Time `json:"signed_url_expires_at"`

	// Duration is in whole seconds; always set for media, 0 when unknown.
	Duration     int64       `json:"duration" gorm:"not null;default:0"`
	Status       AssetStatus `json:"status" gorm:"type:varchar(16);not null;default:'published';index"`
	Pinned       bool        `json:"pinned" gorm:"not null;default:false"`
	Views        int64       `json:"views" gorm:"not null;default:0"`
	IsExternal   bool        `json:"is_external" gorm:"not null;default:false;index"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty" gorm:"type:varchar(2048)"`
	UploadDate   time.Time   `json:"upload_date"`

	Extra datatypes.JSON `json:"extra,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
