package services

import (
	"fmt"

	apperrors "github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadBytes is the upload size ceiling: 10 MiB.
const MaxUploadBytes = 10 * 1024 * 1024

// acceptedMimeTypes is the closed allowlist of document formats the wizard
// accepts.
var acceptedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// UploadService validates incoming document uploads and produces their
// metadata records. Contents are sniffed rather than trusted from the
// declared Content-Type.
type UploadService struct {
	maxBytes int64
}

func NewUploadService(maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	return &UploadService{maxBytes: maxBytes}
}

// MaxBytes returns the configured upload size ceiling.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// ValidateAndDescribe checks the file against the type and size policy and
// returns its upload metadata. Rejections come back as UploadRejected app
// errors with a user-facing reason; the file is never recorded.
func (s *UploadService) ValidateAndDescribe(filename string, size int64, content []byte) (types.UploadMeta, error) {
	log := logger.GetLogger()

	if size > s.maxBytes {
		log.Infow("Upload rejected: too large", "filename", filename, "size", size)
		return types.UploadMeta{}, apperrors.UploadRejected(
			fmt.Sprintf("file too large: %d MB (max %d MB)", size/(1024*1024), s.maxBytes/(1024*1024)),
		)
	}

	detected := mimetype.Detect(content)
	mime := normalizeMime(detected.String())
	if _, ok := acceptedMimeTypes[mime]; !ok {
		log.Infow("Upload rejected: unsupported type", "filename", filename, "mimeType", mime)
		return types.UploadMeta{}, apperrors.UploadRejected(
			fmt.Sprintf("unsupported file type: %s (accepted: PDF, JPEG, PNG)", mime),
		)
	}

	return types.UploadMeta{
		ID:       uuid.NewString(),
		Filename: filename,
		Size:     size,
		MimeType: mime,
		Status:   types.UploadStatusUploaded,
	}, nil
}

// normalizeMime strips any parameters mimetype includes (e.g. "; charset=").
func normalizeMime(mime string) string {
	for i := 0; i < len(mime); i++ {
		if mime[i] == ';' {
			return mime[:i]
		}
	}
	return mime
}
