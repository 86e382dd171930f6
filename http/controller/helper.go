package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenhealth/media-asset-service/storage"
	"github.com/lumenhealth/media-asset-service/upload"
	"github.com/lumenhealth/media-asset-service/utils"
)

// spoolSource materializes one multipart part as a transfer source. Small
// payloads stay in memory; anything above the buffer threshold is spooled
// to a temp file so peak memory stays bounded while the part is uploaded.
func (ctrl *Controller) spoolSource(fileHeader *multipart.FileHeader) (*storage.Source, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	src := &storage.Source{
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
	}

	if fileHeader.Size <= ctrl.Config.EnvConfig.Upload.BufferThreshold {
		buf, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		src.Buffer = buf
		return src, nil
	}

	tmp, err := os.CreateTemp("", "asset-upload-*")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	src.TempPath = tmp.Name()
	return src, nil
}

// writeIngestFailure maps a pipeline failure onto the HTTP surface. Callers
// see a status and a plain message; backend error shapes never leak.
func writeIngestFailure(c *gin.Context, err error) {
	if ve, ok := upload.AsValidationError(err); ok {
		utils.JSON400(c, ve.Error())
		return
	}
	if errors.Is(err, storage.ErrExternalAsset) {
		utils.JSON400(c, "asset is externally hosted; the operation only applies to managed assets")
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		utils.JSON404(c, "asset object not found")
		return
	}
	if te, ok := storage.AsTransferError(err); ok {
		switch te.Kind {
		case storage.KindTimeout:
			utils.JSON408(c, "transfer timed out, please retry")
		case storage.KindNetworkLoss, storage.KindCapacityExceeded, storage.KindRateLimited:
			utils.JSON503(c, "storage backend is temporarily unavailable, please retry")
		case storage.KindPermissionDenied:
			utils.JSON403(c, "storage backend rejected the request")
		default:
			utils.JSON500(c, "transfer failed")
		}
		return
	}
	utils.JSON500(c, "internal error")
}

// writeLookupFailure maps a repository read failure.
func writeLookupFailure(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.JSON404(c, what+" not found")
		return
	}
	utils.JSON500(c, "failed to load "+what)
}
