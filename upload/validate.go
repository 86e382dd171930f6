package upload

import (
	"errors"
	"fmt"
	"time"

	"github.com/lumenhealth/media-asset-service/config"
	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/storage"
	"github.com/lumenhealth/media-asset-service/utils"
)

// ValidationError is a caller-input rejection. It is always synchronous,
// actionable and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError extracts a validation failure, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

var allowedContentTypes = map[entity.AssetCategory][]string{
	entity.CategoryVideo: {
		"video/mp4", "video/mpeg", "video/quicktime",
		"video/x-msvideo", "video/webm", "video/x-matroska",
	},
	entity.CategoryAudio: {
		"audio/mpeg", "audio/mp3", "audio/wav", "audio/wave", "audio/x-wav",
		"audio/ogg", "audio/webm", "audio/aac", "audio/m4a", "audio/x-m4a",
		"audio/mp4",
	},
	entity.CategoryDocument: {
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
	},
	entity.CategoryImage: {
		"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif",
	},
}

const (
	maxTitleLen         = 200
	maxDescriptionLen   = 5000
	maxTranscriptionLen = 50000
	maxDurationSeconds  = 86400
)

// Limits carries the per-category size ceilings and transfer deadlines.
type Limits struct {
	MaxVideoSize  int64
	MaxAudioSize  int64
	MaxDocSize    int64
	MaxImageSize  int64
	VideoDeadline time.Duration
	AudioDeadline time.Duration
	SmallDeadline time.Duration
}

// LimitsFromConfig maps the env config onto orchestrator limits.
func LimitsFromConfig(cfg *config.EnvConfig) Limits {
	return Limits{
		MaxVideoSize:  cfg.Upload.MaxVideoSize,
		MaxAudioSize:  cfg.Upload.MaxAudioSize,
		MaxDocSize:    cfg.Upload.MaxDocSize,
		MaxImageSize:  cfg.Upload.MaxImageSize,
		VideoDeadline: cfg.Upload.VideoDeadline,
		AudioDeadline: cfg.Upload.AudioDeadline,
		SmallDeadline: cfg.Upload.SmallDeadline,
	}
}

// Ceiling returns the hard size limit for a category.
func (l Limits) Ceiling(category entity.AssetCategory) int64 {
	switch category {
	case entity.CategoryVideo:
		return l.MaxVideoSize
	case entity.CategoryAudio:
		return l.MaxAudioSize
	case entity.CategoryDocument:
		return l.MaxDocSize
	default:
		return l.MaxImageSize
	}
}

// Deadline returns the overall transfer deadline for a category.
func (l Limits) Deadline(category entity.AssetCategory) time.Duration {
	switch category {
	case entity.CategoryVideo:
		return l.VideoDeadline
	case entity.CategoryAudio:
		return l.AudioDeadline
	default:
		return l.SmallDeadline
	}
}

// Folder returns the bucket folder assets of a category land in.
func Folder(category entity.AssetCategory) string {
	switch category {
	case entity.CategoryVideo:
		return storage.FolderVideos
	case entity.CategoryAudio:
		return storage.FolderBlogAudio
	case entity.CategoryDocument:
		return storage.FolderDocuments
	default:
		return storage.FolderCovers
	}
}

// Metadata is the declared descriptive payload accompanying an upload.
type Metadata struct {
	Title            string
	Description      string
	Transcription    string
	Category         entity.AssetCategory
	UploadDate       string
	Status           entity.AssetStatus
	Pinned           bool
	DurationFallback int64

	uploadDateParsed time.Time
}

// validate applies the hard pre-transfer checks in order: content type,
// size ceiling, descriptive fields, temporal fields. The first failure
// rejects the upload.
func (l Limits) validate(src *storage.Source, meta *Metadata) error {
	allowed, ok := allowedContentTypes[meta.Category]
	if !ok {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown asset category %q", meta.Category)}
	}
	if !contains(allowed, src.ContentType) {
		return &ValidationError{
			Field:   "content_type",
			Message: fmt.Sprintf("%q is not an accepted %s type", src.ContentType, meta.Category),
		}
	}

	if ceiling := l.Ceiling(meta.Category); src.Size > ceiling {
		return &ValidationError{
			Field: "file_size",
			Message: fmt.Sprintf("file size %.2fGB exceeds the %s limit of %.2fGB",
				gib(src.Size), meta.Category, gib(ceiling)),
		}
	}
	if src.Size <= 0 {
		return &ValidationError{Field: "file", Message: "uploaded file is empty"}
	}

	if meta.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(meta.Title) > maxTitleLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("title cannot exceed %d characters", maxTitleLen)}
	}
	if len(meta.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("description cannot exceed %d characters", maxDescriptionLen)}
	}
	if len(meta.Transcription) > maxTranscriptionLen {
		return &ValidationError{Field: "transcription", Message: fmt.Sprintf("transcription cannot exceed %d characters", maxTranscriptionLen)}
	}

	if meta.UploadDate != "" {
		parsed, err := utils.ParseUTC(meta.UploadDate)
		if err != nil {
			return &ValidationError{
				Field:   "upload_date",
				Message: "invalid date format, use ISO 8601 (e.g. 2024-01-15T10:00:00Z)",
			}
		}
		meta.uploadDateParsed = parsed
	}

	if meta.DurationFallback < 0 || meta.DurationFallback > maxDurationSeconds {
		return &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("duration must be between 0 and %d seconds", maxDurationSeconds),
		}
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func gib(size int64) float64 {
	return float64(size) / float64(config.GiB)
}
