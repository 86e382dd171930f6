package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/infra/produce"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

type nopLogger struct{}

func (nopLogger) InfoWithContextf(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) WarningWithContextf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{}) {
}

type fakeBlogStore struct {
	due     []entity.Blog
	listErr error

	publishErr map[uuid.UUID]error
	lost       map[uuid.UUID]bool
	published  []uuid.UUID

	notifiedErr error
	notified    []uuid.UUID
}

func (f *fakeBlogStore) FindDuePublications(now time.Time) ([]entity.Blog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var due []entity.Blog
	for _, blog := range f.due {
		if blog.Status == entity.BlogScheduled && blog.ScheduledAt != nil && !blog.ScheduledAt.After(now) {
			due = append(due, blog)
		}
	}
	return due, nil
}

func (f *fakeBlogStore) PublishScheduled(id uuid.UUID) (bool, error) {
	if err := f.publishErr[id]; err != nil {
		return false, err
	}
	if f.lost[id] {
		return false, nil
	}
	f.published = append(f.published, id)
	return true, nil
}

func (f *fakeBlogStore) MarkNotified(id uuid.UUID) error {
	if f.notifiedErr != nil {
		return f.notifiedErr
	}
	f.notified = append(f.notified, id)
	return nil
}

type fakeNotifier struct {
	err      error
	messages []produce.BlogPublishedMessage
}

func (f *fakeNotifier) PublishBlogPublished(ctx context.Context, msg produce.BlogPublishedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func scheduledBlog(title string, at time.Time) entity.Blog {
	return entity.Blog{
		ID:          uuid.New(),
		Title:       title,
		Status:      entity.BlogScheduled,
		ScheduledAt: &at,
	}
}

func TestPublishSweepPromotesDueBlogs(t *testing.T) {
	trigger := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blog := scheduledBlog("Winter stretching guide", trigger)

	store := &fakeBlogStore{due: []entity.Blog{blog}}
	notifier := &fakeNotifier{}
	sweep := NewPublishSweep(store, notifier, fixedClock{t: trigger.Add(time.Hour)}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 1, published)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []uuid.UUID{blog.ID}, store.published)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, blog.ID.String(), notifier.messages[0].BlogID)
	assert.Equal(t, "Winter stretching guide", notifier.messages[0].Title)
	assert.Equal(t, []uuid.UUID{blog.ID}, store.notified)
}

func TestPublishSweepLeavesFutureBlogsUntouched(t *testing.T) {
	trigger := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blog := scheduledBlog("Not yet", trigger)

	// The sweep before the trigger instant sees nothing due.
	store := &fakeBlogStore{due: []entity.Blog{blog}}
	sweep := NewPublishSweep(store, &fakeNotifier{}, fixedClock{t: trigger.Add(-time.Hour)}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 0, published)
	assert.Equal(t, 0, failed)
	assert.Empty(t, store.published)
}

func TestPublishSweepIsolatesItemFailures(t *testing.T) {
	trigger := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := scheduledBlog("first", trigger)
	broken := scheduledBlog("broken", trigger)
	last := scheduledBlog("last", trigger)

	store := &fakeBlogStore{
		due:        []entity.Blog{first, broken, last},
		publishErr: map[uuid.UUID]error{broken.ID: errors.New("db deadlock")},
	}
	sweep := NewPublishSweep(store, &fakeNotifier{}, fixedClock{t: trigger.Add(time.Hour)}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 2, published)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []uuid.UUID{first.ID, last.ID}, store.published)
}

func TestPublishSweepSkipsBlogsAlreadyPublished(t *testing.T) {
	trigger := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blog := scheduledBlog("raced", trigger)

	store := &fakeBlogStore{
		due:  []entity.Blog{blog},
		lost: map[uuid.UUID]bool{blog.ID: true},
	}
	notifier := &fakeNotifier{}
	sweep := NewPublishSweep(store, notifier, fixedClock{t: trigger.Add(time.Hour)}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 0, published)
	assert.Equal(t, 0, failed)
	assert.Empty(t, notifier.messages, "a lost race must not emit a duplicate event")
}

func TestPublishSweepEventFailureDoesNotUndoPublication(t *testing.T) {
	trigger := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blog := scheduledBlog("published anyway", trigger)

	store := &fakeBlogStore{due: []entity.Blog{blog}}
	sweep := NewPublishSweep(store, &fakeNotifier{err: errors.New("broker down")}, fixedClock{t: trigger.Add(time.Hour)}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 1, published)
	assert.Equal(t, 0, failed)
	assert.Empty(t, store.notified, "notified flag stays clear when delivery fails")
}

func TestPublishSweepListFailure(t *testing.T) {
	store := &fakeBlogStore{listErr: errors.New("db down")}
	sweep := NewPublishSweep(store, &fakeNotifier{}, fixedClock{t: time.Now()}, nopLogger{})

	published, failed := sweep.Run(context.Background())
	assert.Equal(t, 0, published)
	assert.Equal(t, 0, failed)
}
