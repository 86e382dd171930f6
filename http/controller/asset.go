package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/upload"
	"github.com/lumenhealth/media-asset-service/utils"
)

// UploadAsset ingests one multipart upload: the primary payload under
// "file", an optional thumbnail under "thumbnail", and descriptive fields
// alongside. The response carries the persisted record plus any non-fatal
// warnings from the pipeline.
func (ctrl *Controller) UploadAsset(c *gin.Context) {
	ctx := c.Request.Context()

	category := entity.AssetCategory(strings.TrimSpace(c.PostForm("category")))
	if category == "" {
		category = entity.CategoryVideo
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Asset] no file in form data: %v", err)
		utils.JSON400(c, "file is required")
		return
	}

	primary, err := ctrl.spoolSource(fileHeader)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] failed to spool upload %q", fileHeader.Filename)
		utils.JSON500(c, "failed to read uploaded file")
		return
	}

	input := upload.Input{
		Primary: primary,
		Meta: upload.Metadata{
			Title:            strings.TrimSpace(c.PostForm("title")),
			Description:      c.PostForm("description"),
			Transcription:    c.PostForm("transcription"),
			Category:         category,
			UploadDate:       strings.TrimSpace(c.PostForm("upload_date")),
			Status:           entity.AssetStatus(strings.TrimSpace(c.PostForm("status"))),
			Pinned:           c.PostForm("pinned") == "true",
			DurationFallback: parseInt64(c.PostForm("duration")),
		},
	}

	if thumbHeader, thumbErr := c.FormFile("thumbnail"); thumbErr == nil {
		secondary, spoolErr := ctrl.spoolSource(thumbHeader)
		if spoolErr != nil {
			// Thumbnail trouble never blocks the primary upload.
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Asset] failed to spool thumbnail %q: %v", thumbHeader.Filename, spoolErr)
		} else {
			input.Secondary = secondary
		}
	}

	result, err := ctrl.Orchestrator.Ingest(ctx, input)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] ingestion of %q failed", fileHeader.Filename)
		writeIngestFailure(c, err)
		return
	}

	utils.JSON201(c, gin.H{
		"asset":    result.Asset,
		"warnings": result.Warnings,
	})
}

// RegisterExternalVideo records a video hosted on a third-party URL. No
// bytes are transferred; the record is reference-only.
func (ctrl *Controller) RegisterExternalVideo(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		VideoURL    string `json:"video_url" binding:"required"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Duration    int64  `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "video_url is required")
		return
	}

	asset, err := ctrl.Orchestrator.RegisterExternal(ctx, req.VideoURL, upload.Metadata{
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		DurationFallback: req.Duration,
	})
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] external registration failed")
		writeIngestFailure(c, err)
		return
	}

	utils.JSON201(c, asset)
}

func (ctrl *Controller) ListAssets(c *gin.Context) {
	ctx := c.Request.Context()

	category := entity.AssetCategory(c.Query("category"))
	if category == "" {
		category = entity.CategoryVideo
	}

	assets, err := ctrl.Repository.AssetRepo.FindByCategory(category)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] failed to list %s assets", category)
		utils.JSON500(c, "failed to list assets")
		return
	}

	utils.JSON200(c, gin.H{
		"assets": assets,
		"count":  len(assets),
	})
}

// WatchAsset resolves the playable locator and counts the view. This is
// the only access pattern that touches the view counter; previews never do.
func (ctrl *Controller) WatchAsset(c *gin.Context) {
	ctx := c.Request.Context()

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid asset id")
		return
	}

	asset, err := ctrl.Repository.AssetRepo.FindByID(assetID)
	if err != nil {
		writeLookupFailure(c, err, "asset")
		return
	}

	if err := ctrl.Repository.AssetRepo.IncrementViews(assetID); err != nil {
		// Never fail playback over bookkeeping.
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Asset] view count update failed for %s: %v", assetID, err)
	} else {
		asset.Views++
	}

	// Rolling per-day counter feeds the trending list; best effort.
	trendKey := fmt.Sprintf("views:%s:%s", ctrl.Clock.Now().Format("2006-01-02"), assetID)
	if _, err := ctrl.Infra.Redis.Increment(ctx, trendKey); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Asset] trending counter update failed for %s: %v", assetID, err)
	}

	utils.JSON200(c, gin.H{
		"url":        playableURL(asset, ctrl.Clock),
		"expires_at": asset.SignedURLExpiresAt,
		"asset":      asset,
	})
}

// PreviewAsset resolves the playable locator without counting a view.
func (ctrl *Controller) PreviewAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid asset id")
		return
	}

	asset, err := ctrl.Repository.AssetRepo.FindByID(assetID)
	if err != nil {
		writeLookupFailure(c, err, "asset")
		return
	}

	utils.JSON200(c, gin.H{
		"url":        playableURL(asset, ctrl.Clock),
		"expires_at": asset.SignedURLExpiresAt,
		"asset":      asset,
	})
}

// RefreshAssetURL reissues the signed locator for one managed asset on
// demand. External assets are rejected before any backend call.
func (ctrl *Controller) RefreshAssetURL(c *gin.Context) {
	ctx := c.Request.Context()

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid asset id")
		return
	}

	asset, err := ctrl.Repository.AssetRepo.FindByID(assetID)
	if err != nil {
		writeLookupFailure(c, err, "asset")
		return
	}

	if asset.IsExternal {
		utils.JSON400(c, "external assets have no signed URL to refresh")
		return
	}

	signed, err := ctrl.Signer.Refresh(ctx, asset.FileName)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] refresh failed for %s", assetID)
		writeIngestFailure(c, err)
		return
	}

	if err := ctrl.Repository.AssetRepo.UpdateSignedURL(assetID, signed.URL, signed.ExpiresAt); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] failed to save refreshed locator for %s", assetID)
		utils.JSON500(c, "failed to save refreshed URL")
		return
	}

	utils.JSON200(c, gin.H{
		"signed_url": signed.URL,
		"expires_at": signed.ExpiresAt,
	})
}

// DeleteAsset removes the record and, for managed assets, the backing
// object. A backend object already gone does not fail the delete.
func (ctrl *Controller) DeleteAsset(c *gin.Context) {
	ctx := c.Request.Context()

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid asset id")
		return
	}

	asset, err := ctrl.Repository.AssetRepo.FindByID(assetID)
	if err != nil {
		writeLookupFailure(c, err, "asset")
		return
	}

	if !asset.IsExternal {
		if err := ctrl.Adapter.Delete(ctx, asset.FileName); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] object delete failed for %s", assetID)
			writeIngestFailure(c, err)
			return
		}
	}

	if err := ctrl.Repository.AssetRepo.Delete(assetID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] record delete failed for %s", assetID)
		utils.JSON500(c, "failed to delete asset")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Asset] deleted asset %s (%s)", assetID, asset.FileName)
	utils.JSON200(c, gin.H{
		"message":  "asset deleted",
		"asset_id": assetID,
	})
}

func (ctrl *Controller) UpdateAssetPinned(c *gin.Context) {
	ctx := c.Request.Context()

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "invalid asset id")
		return
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "invalid request body")
		return
	}

	if err := ctrl.Repository.AssetRepo.UpdatePinned(assetID, req.Pinned); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Asset] pin update failed for %s", assetID)
		utils.JSON500(c, "failed to update asset")
		return
	}

	utils.JSON200(c, gin.H{
		"asset_id": assetID,
		"pinned":   req.Pinned,
	})
}

// playableURL prefers the signed locator while it is still valid and falls
// back to the stable public one. External assets always serve their
// original URL.
func playableURL(asset *entity.Asset, clock utils.Clock) string {
	if asset.IsExternal {
		return asset.PublicURL
	}
	if asset.SignedURL != "" && asset.SignedURLExpiresAt.After(clock.Now()) {
		return asset.SignedURL
	}
	return asset.PublicURL
}

func parseInt64(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
