package services

import (
	"testing"

	apperrors "github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

var (
	pngContent  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegContent = []byte("\xff\xd8\xff\xe0\x00\x10JFIF")
	pdfContent  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	zipContent  = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")
)

func assertRejected(t *testing.T, err error) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.UploadRejectedError, appErr.Type)
}

func TestValidateAndDescribeAccepted(t *testing.T) {
	svc := NewUploadService(0)

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantMime string
	}{
		{"png photo", "photo.png", pngContent, "image/png"},
		{"jpeg scan", "scan.jpg", jpegContent, "image/jpeg"},
		{"pdf statement", "statement.pdf", pdfContent, "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := svc.ValidateAndDescribe(tt.filename, 500_000, tt.content)
			require.NoError(t, err)
			assert.NotEmpty(t, meta.ID)
			assert.Equal(t, tt.filename, meta.Filename)
			assert.Equal(t, int64(500_000), meta.Size)
			assert.Equal(t, tt.wantMime, meta.MimeType)
			assert.Equal(t, types.UploadStatusUploaded, meta.Status)
		})
	}
}

func TestValidateAndDescribeRejectsWrongType(t *testing.T) {
	svc := NewUploadService(0)
	_, err := svc.ValidateAndDescribe("archive.zip", 1024, zipContent)
	assertRejected(t, err)
}

func TestValidateAndDescribeRejectsTooLarge(t *testing.T) {
	svc := NewUploadService(0)
	_, err := svc.ValidateAndDescribe("big.png", 11_000_000, pngContent)
	assertRejected(t, err)
}

func TestValidateAndDescribeSniffsContentNotExtension(t *testing.T) {
	svc := NewUploadService(0)

	// A zip renamed to .png is still a zip.
	_, err := svc.ValidateAndDescribe("sneaky.png", 1024, zipContent)
	assertRejected(t, err)
}

func TestValidateAndDescribeMaxBoundary(t *testing.T) {
	svc := NewUploadService(0)

	meta, err := svc.ValidateAndDescribe("exact.png", MaxUploadBytes, pngContent)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxUploadBytes), meta.Size)

	_, err = svc.ValidateAndDescribe("over.png", MaxUploadBytes+1, pngContent)
	assertRejected(t, err)
}
