package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenhealth/media-asset-service/entity"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(blog *entity.Blog) error {
	return r.db.Create(blog).Error
}

func (r *BlogRepository) FindByID(id uuid.UUID) (*entity.Blog, error) {
	var blog entity.Blog
	err := r.db.Where("id = ?", id).First(&blog).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *BlogRepository) FindAll() ([]entity.Blog, error) {
	var blogs []entity.Blog
	err := r.db.Order("upload_date DESC").Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// FindDuePublications returns scheduled blogs whose trigger instant has
// passed at the given UTC now.
func (r *BlogRepository) FindDuePublications(now time.Time) ([]entity.Blog, error) {
	var blogs []entity.Blog
	err := r.db.
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", entity.BlogScheduled, now).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// PublishScheduled flips one blog from scheduled to published and clears
// its trigger. The update is compare-and-swap on the current status, so a
// concurrent sweep that already published the blog makes this a no-op;
// the boolean reports whether this call performed the transition.
func (r *BlogRepository) PublishScheduled(id uuid.UUID) (bool, error) {
	result := r.db.Model(&entity.Blog{}).
		Where("id = ? AND status = ?", id, entity.BlogScheduled).
		Updates(map[string]interface{}{
			"status":       entity.BlogPublished,
			"scheduled_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *BlogRepository) MarkNotified(id uuid.UUID) error {
	return r.db.Model(&entity.Blog{}).Where("id = ?", id).Update("is_notified", true).Error
}

func (r *BlogRepository) Update(blog *entity.Blog) error {
	return r.db.Save(blog).Error
}

func (r *BlogRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Blog{}, "id = ?", id).Error
}
