package entity

import (
	"time"

	"github.com/google/uuid"
)

type BlogStatus string

const (
	BlogPublished   BlogStatus = "published"
	BlogUnpublished BlogStatus = "unpublished"
	BlogScheduled   BlogStatus = "scheduled"
)

// Blog is a content item with time-gated publication. A scheduled blog
// always carries a ScheduledAt instant; the hourly sweep clears it when
// the blog is published.
type Blog struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	CoverImage  string     `json:"cover_image,omitempty" gorm:"type:varchar(2048)"`
	UploadDate  time.Time  `json:"upload_date" gorm:"not null"`
	Status      BlogStatus `json:"status" gorm:"type:varchar(16);not null;default:'published';index:idx_blogs_status_scheduled_at,priority:1"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" gorm:"index:idx_blogs_status_scheduled_at,priority:2"`
	IsNotified  bool       `json:"is_notified" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
