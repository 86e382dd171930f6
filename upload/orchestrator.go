package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/storage"
	"github.com/lumenhealth/media-asset-service/utils"
)

// Transferer is the storage adapter surface the orchestrator needs.
type Transferer interface {
	Transfer(ctx context.Context, src *storage.Source, folder string, deadline time.Duration) (*storage.TransferResult, error)
	Delete(ctx context.Context, key string) error
}

// URLIssuer mints the initial signed locator for a freshly stored object.
type URLIssuer interface {
	Issue(ctx context.Context, key string, window time.Duration) (*storage.SignedURL, error)
}

// AssetStore persists the assembled record.
type AssetStore interface {
	Create(asset *entity.Asset) error
}

// Logger matches the infra logger call surface.
type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

// Input is one ingestion request: the primary payload, an optional
// secondary payload (thumbnail), and the declared metadata.
type Input struct {
	Primary   *storage.Source
	Secondary *storage.Source
	Meta      Metadata
}

// IngestResult is the persisted record plus any non-fatal warnings
// (secondary-transfer failure, compensation outcome, signing fallback).
type IngestResult struct {
	Asset    *entity.Asset
	Warnings []string
}

// Orchestrator runs the ingestion pipeline: validate, probe, transfer
// primary and secondary concurrently, issue the signed URL, persist.
type Orchestrator struct {
	transferer Transferer
	signer     URLIssuer
	store      AssetStore
	limits     Limits
	clock      utils.Clock
	logger     Logger
	httpClient *http.Client
}

func NewOrchestrator(transferer Transferer, signer URLIssuer, store AssetStore, limits Limits, clock utils.Clock, logger Logger) *Orchestrator {
	return &Orchestrator{
		transferer: transferer,
		signer:     signer,
		store:      store,
		limits:     limits,
		clock:      clock,
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Ingest validates the input, transfers the payloads and persists the
// asset record. The primary transfer is necessary; a secondary failure
// after primary success degrades to a record without a thumbnail. Nothing
// is persisted before both transfers have settled.
func (o *Orchestrator) Ingest(ctx context.Context, in Input) (*IngestResult, error) {
	if in.Primary == nil {
		return nil, &ValidationError{Field: "file", Message: "file is required"}
	}
	if err := o.limits.validate(in.Primary, &in.Meta); err != nil {
		// A rejected upload still owns its temp resources.
		_ = in.Primary.Cleanup()
		if in.Secondary != nil {
			_ = in.Secondary.Cleanup()
		}
		return nil, err
	}

	var duration int64
	if in.Meta.Category == entity.CategoryVideo || in.Meta.Category == entity.CategoryAudio {
		duration = ProbeDuration(ctx, in.Primary, in.Meta.DurationFallback)
	}

	// Transfers run detached from the request context: an aborting caller
	// does not cancel a dispatched transfer, which completes or times out
	// under its own deadline.
	transferCtx := context.WithoutCancel(ctx)

	var (
		primaryResult   *storage.TransferResult
		secondaryResult *storage.TransferResult
		secondaryErr    error
	)

	g, gctx := errgroup.WithContext(transferCtx)
	g.Go(func() error {
		result, err := o.transferer.Transfer(gctx, in.Primary, Folder(in.Meta.Category), o.limits.Deadline(in.Meta.Category))
		if err != nil {
			return err
		}
		primaryResult = result
		return nil
	})
	if in.Secondary != nil {
		g.Go(func() error {
			result, err := o.transferer.Transfer(transferCtx, in.Secondary, storage.FolderThumbnails, o.limits.SmallDeadline)
			if err != nil {
				secondaryErr = err
				return nil // best effort, never aborts ingestion
			}
			secondaryResult = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Primary failed: compensate for a secondary object that may have
		// landed, and report the compensation outcome.
		if secondaryResult != nil {
			if delErr := o.transferer.Delete(transferCtx, secondaryResult.Key); delErr != nil {
				o.logger.ErrorWithContextf(ctx, delErr, "[Ingest] failed to clean up orphaned thumbnail %s", secondaryResult.Key)
			}
		}
		return nil, err
	}

	result := &IngestResult{}
	if secondaryErr != nil {
		o.logger.WarningWithContextf(ctx, "[Ingest] thumbnail transfer failed, continuing without it: %v", secondaryErr)
		result.Warnings = append(result.Warnings, fmt.Sprintf("thumbnail upload failed: %v", secondaryErr))
	}

	signedURL := primaryResult.PublicURL
	expiresAt := o.clock.Now().Add(storage.DefaultSignedURLWindow)
	if signed, err := o.signer.Issue(ctx, primaryResult.Key, 0); err != nil {
		// Fall back to the public locator rather than failing the upload.
		o.logger.WarningWithContextf(ctx, "[Ingest] signed URL issuance failed for %s: %v", primaryResult.Key, err)
		result.Warnings = append(result.Warnings, "signed URL issuance failed, serving public URL")
	} else {
		signedURL = signed.URL
		expiresAt = signed.ExpiresAt
	}

	asset, err := o.assembleAsset(in.Meta, primaryResult, secondaryResult, duration, signedURL, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := o.store.Create(asset); err != nil {
		return nil, fmt.Errorf("persist asset record: %w", err)
	}

	o.logger.InfoWithContextf(ctx, "[Ingest] stored %s asset %s (%d bytes, streamed=%t)",
		asset.Category, asset.ID, asset.FileSize, primaryResult.Streamed)

	result.Asset = asset
	return result, nil
}

func (o *Orchestrator) assembleAsset(meta Metadata, primary, secondary *storage.TransferResult, duration int64, signedURL string, expiresAt time.Time) (*entity.Asset, error) {
	now := o.clock.Now()

	uploadDate := meta.uploadDateParsed
	if uploadDate.IsZero() {
		uploadDate = now
	}
	status := meta.Status
	if status == "" {
		status = entity.AssetPublished
	}

	extra, err := json.Marshal(map[string]interface{}{
		"original_name": primary.Key,
		"uploaded_at":   now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("encode asset extra: %w", err)
	}

	asset := &entity.Asset{
		ID:                 uuid.New(),
		Title:              meta.Title,
		Description:        meta.Description,
		Transcription:      meta.Transcription,
		Category:           meta.Category,
		FileName:           primary.Key,
		PublicURL:          primary.PublicURL,
		ContentType:        primary.ContentType,
		FileSize:           primary.Size,
		SignedURL:          signedURL,
		SignedURLExpiresAt: expiresAt,
		Duration:           duration,
		Status:             status,
		Pinned:             meta.Pinned,
		UploadDate:         uploadDate,
		Extra:              datatypes.JSON(extra),
	}
	if secondary != nil {
		asset.ThumbnailURL = secondary.PublicURL
	}
	return asset, nil
}

// RegisterExternal records an asset hosted on a third-party URL without
// streaming any bytes into the managed bucket. The URL is HEAD-probed for
// metadata with a short timeout; probe failure falls back to defaults.
func (o *Orchestrator) RegisterExternal(ctx context.Context, rawURL string, meta Metadata) (*entity.Asset, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &ValidationError{Field: "video_url", Message: "a valid http(s) URL is required"}
	}
	if meta.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(meta.Title) > maxTitleLen {
		return nil, &ValidationError{Field: "title", Message: fmt.Sprintf("title cannot exceed %d characters", maxTitleLen)}
	}

	contentType, contentLength := o.probeExternal(ctx, rawURL)

	now := o.clock.Now()
	status := meta.Status
	if status == "" {
		status = entity.AssetPublished
	}

	asset := &entity.Asset{
		ID:          uuid.New(),
		Title:       meta.Title,
		Description: meta.Description,
		Category:    entity.CategoryVideo,
		FileName:    storage.ExternalKey(rawURL, o.clock),
		PublicURL:   rawURL,
		SignedURL:   rawURL,
		ContentType: contentType,
		FileSize:    contentLength,
		Duration:    max64(meta.DurationFallback, 0),
		Status:      status,
		IsExternal:  true,
		UploadDate:  now,
	}
	if err := o.store.Create(asset); err != nil {
		return nil, fmt.Errorf("persist external asset record: %w", err)
	}

	o.logger.InfoWithContextf(ctx, "[Ingest] registered external asset %s -> %s", asset.ID, asset.FileName)
	return asset, nil
}

func (o *Orchestrator) probeExternal(ctx context.Context, rawURL string) (string, int64) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "video/mp4", 0
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.logger.WarningWithContextf(ctx, "[Ingest] external URL metadata probe failed: %v", err)
		return "video/mp4", 0
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return contentType, max64(resp.ContentLength, 0)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
