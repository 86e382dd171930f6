package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/utils"
)

// CreateBlog persists a blog. A scheduled blog must carry a trigger
// instant strictly in the future; the hourly sweep publishes it once the
// instant has passed.
func (ctrl *Controller) CreateBlog(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		CoverImage  string `json:"cover_image"`
		UploadDate  string `json:"upload_date"`
		Status      string `json:"status"`
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "title is required")
		return
	}
	if len(req.Title) > 200 {
		utils.JSON400(c, "title cannot exceed 200 characters")
		return
	}

	status := entity.BlogStatus(req.Status)
	if status == "" {
		status = entity.BlogPublished
	}
	switch status {
	case entity.BlogPublished, entity.BlogUnpublished, entity.BlogScheduled:
	default:
		utils.JSON400(c, "status must be published, unpublished or scheduled")
		return
	}

	blog := &entity.Blog{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Status:      status,
		UploadDate:  ctrl.Clock.Now(),
	}

	if req.UploadDate != "" {
		parsed, err := utils.ParseUTC(req.UploadDate)
		if err != nil {
			utils.JSON400(c, "invalid upload_date, use ISO 8601 (e.g. 2024-01-15T10:00:00Z)")
			return
		}
		blog.UploadDate = parsed
	}

	if status == entity.BlogScheduled {
		if req.ScheduledAt == "" {
			utils.JSON400(c, "scheduled_at is required for a scheduled blog")
			return
		}
		scheduledAt, err := utils.ParseUTC(req.ScheduledAt)
		if err != nil {
			utils.JSON400(c, "invalid scheduled_at, use ISO 8601 (e.g. 2024-01-15T10:00:00Z)")
			return
		}
		if !utils.IsInFuture(ctrl.Clock, scheduledAt) {
			utils.JSON400(c, "scheduled_at must be in the future")
			return
		}
		blog.ScheduledAt = &scheduledAt
	} else if req.ScheduledAt != "" {
		utils.JSON400(c, "scheduled_at only applies to scheduled blogs")
		return
	}

	if err := ctrl.Repository.BlogRepo.Create(blog); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Blog] failed to create blog")
		utils.JSON500(c, "failed to create blog")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Blog] created blog %s (status=%s)", blog.ID, blog.Status)
	utils.JSON201(c, blog)
}

func (ctrl *Controller) ListBlogs(c *gin.Context) {
	ctx := c.Request.Context()

	blogs, err := ctrl.Repository.BlogRepo.FindAll()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Blog] failed to list blogs")
		utils.JSON500(c, "failed to list blogs")
		return
	}

	utils.JSON200(c, gin.H{
		"blogs": blogs,
		"count": len(blogs),
	})
}

func (ctrl *Controller) GetBlog(c *gin.Context) {
	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid blog id")
		return
	}

	blog, err := ctrl.Repository.BlogRepo.FindByID(blogID)
	if err != nil {
		writeLookupFailure(c, err, "blog")
		return
	}

	utils.JSON200(c, blog)
}

func (ctrl *Controller) DeleteBlog(c *gin.Context) {
	ctx := c.Request.Context()

	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid blog id")
		return
	}

	if err := ctrl.Repository.BlogRepo.Delete(blogID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Blog] failed to delete blog %s", blogID)
		utils.JSON500(c, "failed to delete blog")
		return
	}

	utils.JSON200(c, gin.H{
		"message": "blog deleted",
		"blog_id": blogID,
	})
}
