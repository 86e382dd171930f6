package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhealth/media-asset-service/config"
	"github.com/lumenhealth/media-asset-service/entity"
	"github.com/lumenhealth/media-asset-service/storage"
)

func testLimits() Limits {
	return Limits{
		MaxVideoSize:  5 * config.GiB,
		MaxAudioSize:  500 * config.MiB,
		MaxDocSize:    100 * config.MiB,
		MaxImageSize:  10 * config.MiB,
		VideoDeadline: 2 * time.Hour,
		AudioDeadline: time.Hour,
		SmallDeadline: 15 * time.Minute,
	}
}

func videoSource(size int64) *storage.Source {
	return &storage.Source{Name: "clip.mp4", ContentType: "video/mp4", Size: size, Buffer: []byte{0}}
}

func TestValidateAcceptsWellFormedUpload(t *testing.T) {
	meta := Metadata{
		Title:      "Recovery after surgery",
		Category:   entity.CategoryVideo,
		UploadDate: "2024-01-15T10:00:00Z",
	}
	err := testLimits().validate(videoSource(100*config.MiB), &meta)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), meta.uploadDateParsed)
}

func TestValidateRejectsOversizeVideoBeforeTransfer(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.CategoryVideo}

	// 6 GiB declared size against the 5 GiB ceiling.
	err := testLimits().validate(videoSource(6442450944), &meta)
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "file_size", ve.Field)
	assert.Contains(t, ve.Message, "6.00GB")
	assert.Contains(t, ve.Message, "limit of 5.00GB")
}

func TestValidateRejectsDisallowedContentType(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.CategoryVideo}
	src := &storage.Source{Name: "malware.exe", ContentType: "application/x-msdownload", Size: 100, Buffer: []byte{0}}

	err := testLimits().validate(src, &meta)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "content_type", ve.Field)
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.AssetCategory("archive")}
	err := testLimits().validate(videoSource(100), &meta)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "category", ve.Field)
}

func TestValidateDescriptiveFieldBounds(t *testing.T) {
	cases := []struct {
		name  string
		meta  Metadata
		field string
	}{
		{"missing title", Metadata{Category: entity.CategoryVideo}, "title"},
		{"title too long", Metadata{Title: strings.Repeat("a", 201), Category: entity.CategoryVideo}, "title"},
		{"description too long", Metadata{Title: "t", Description: strings.Repeat("a", 5001), Category: entity.CategoryVideo}, "description"},
		{"transcription too long", Metadata{Title: "t", Transcription: strings.Repeat("a", 50001), Category: entity.CategoryVideo}, "transcription"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := testLimits().validate(videoSource(100), &tc.meta)
			ve, ok := AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidateRejectsBadUploadDate(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.CategoryVideo, UploadDate: "15/01/2024"}
	err := testLimits().validate(videoSource(100), &meta)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "upload_date", ve.Field)
}

func TestValidateDurationBounds(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.CategoryVideo, DurationFallback: 86401}
	err := testLimits().validate(videoSource(100), &meta)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "duration", ve.Field)

	meta = Metadata{Title: "t", Category: entity.CategoryVideo, DurationFallback: -1}
	err = testLimits().validate(videoSource(100), &meta)
	_, ok = AsValidationError(err)
	assert.True(t, ok)
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	meta := Metadata{Title: "t", Category: entity.CategoryVideo}
	err := testLimits().validate(videoSource(0), &meta)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "file", ve.Field)
}

func TestCategoryRouting(t *testing.T) {
	limits := testLimits()

	assert.Equal(t, 5*config.GiB, limits.Ceiling(entity.CategoryVideo))
	assert.Equal(t, 500*config.MiB, limits.Ceiling(entity.CategoryAudio))
	assert.Equal(t, 2*time.Hour, limits.Deadline(entity.CategoryVideo))
	assert.Equal(t, 15*time.Minute, limits.Deadline(entity.CategoryImage))

	assert.Equal(t, storage.FolderVideos, Folder(entity.CategoryVideo))
	assert.Equal(t, storage.FolderBlogAudio, Folder(entity.CategoryAudio))
	assert.Equal(t, storage.FolderDocuments, Folder(entity.CategoryDocument))
	assert.Equal(t, storage.FolderCovers, Folder(entity.CategoryImage))
}
