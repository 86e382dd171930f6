package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/infra/produce"
	"github.com/lumenhealth/media-asset-service/utils"
)

type BlogStore interface {
	FindDuePublications(now time.Time) ([]entity.Blog, error)
	PublishScheduled(id uuid.UUID) (bool, error)
	MarkNotified(id uuid.UUID) error
}

type Notifier interface {
	PublishBlogPublished(ctx context.Context, msg produce.BlogPublishedMessage) error
}

// PublishSweep promotes scheduled blogs whose trigger instant has passed.
// One item failing never blocks the rest of the batch.
type PublishSweep struct {
	blogs    BlogStore
	notifier Notifier
	clock    utils.Clock
	logger   Logger
}

func NewPublishSweep(blogs BlogStore, notifier Notifier, clock utils.Clock, logger Logger) *PublishSweep {
	return &PublishSweep{
		blogs:    blogs,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// Run executes one sweep and reports how many blogs it published and how
// many items failed. A blog already published by a concurrent sweep
// counts as neither.
func (s *PublishSweep) Run(ctx context.Context) (published, failed int) {
	now := s.clock.Now()

	due, err := s.blogs.FindDuePublications(now)
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "publish sweep: listing due blogs failed")
		return 0, 0
	}
	if len(due) == 0 {
		return 0, 0
	}

	for _, blog := range due {
		ok, err := s.blogs.PublishScheduled(blog.ID)
		if err != nil {
			failed++
			s.logger.ErrorWithContextf(ctx, err, "publish sweep: blog %s failed", blog.ID)
			continue
		}
		if !ok {
			// Another sweep won the transition.
			continue
		}

		published++
		s.notify(ctx, blog, now)
	}

	s.logger.InfoWithContextf(ctx, "publish sweep finished: %d published, %d failed of %d due", published, failed, len(due))
	return published, failed
}

// notify is best effort: the publication already happened, so a broker or
// bookkeeping failure is logged and the sweep moves on.
func (s *PublishSweep) notify(ctx context.Context, blog entity.Blog, now time.Time) {
	if s.notifier == nil {
		return
	}

	msg := produce.BlogPublishedMessage{
		BlogID:      blog.ID.String(),
		Title:       blog.Title,
		PublishedAt: now.Format(time.RFC3339),
	}
	if err := s.notifier.PublishBlogPublished(ctx, msg); err != nil {
		s.logger.WarningWithContextf(ctx, "blog %s published but event delivery failed: %v", blog.ID, err)
		return
	}
	if err := s.blogs.MarkNotified(blog.ID); err != nil {
		s.logger.WarningWithContextf(ctx, "blog %s published but notified flag not saved: %v", blog.ID, err)
	}
}
