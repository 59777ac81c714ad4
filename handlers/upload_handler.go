package handlers

import (
	"io"
	"net/http"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/VisaTrek/visa-trek-backend/services"
	"github.com/gin-gonic/gin"
)

// UploadHandler accepts supporting documents for the current application and
// kicks off the extraction pipeline for each accepted file.
type UploadHandler struct {
	appModel      *models.ApplicationModel
	uploadSvc     *services.UploadService
	extractionSvc *services.ExtractionService
}

func NewUploadHandler(model *models.ApplicationModel, uploadSvc *services.UploadService, extractionSvc *services.ExtractionService) *UploadHandler {
	return &UploadHandler{
		appModel:      model,
		uploadSvc:     uploadSvc,
		extractionSvc: extractionSvc,
	}
}

// UploadDocumentHandler accepts a multipart upload under the "file" field,
// validates type and size by sniffing content, records it against the
// current application and starts extraction.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	log := logger.GetLogger()

	appID := h.appModel.CurrentAppID()
	if appID == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Errorw("Missing upload file", "error", err)
		if err := c.Error(errors.ValidationFailed("Missing file", "multipart field 'file' is required")); err != nil {
			log.Errorw("Failed to add validation error", "error", err)
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		if err := c.Error(errors.InternalServerError("Failed to open upload")); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.uploadSvc.MaxBytes()+1))
	if err != nil {
		if err := c.Error(errors.InternalServerError("Failed to read upload")); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	meta, err := h.uploadSvc.ValidateAndDescribe(fileHeader.Filename, int64(len(content)), content)
	if err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add upload error", "error", err)
		}
		return
	}

	if err := h.appModel.AddUpload(c.Request.Context(), meta); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	h.extractionSvc.StartExtraction(appID, meta)

	log.Infow("Document uploaded",
		"applicationId", appID,
		"uploadId", meta.ID,
		"mimeType", meta.MimeType,
		"size", meta.Size,
	)
	c.JSON(http.StatusCreated, meta)
}

// ListUploadsHandler returns upload metadata for the current application.
func (h *UploadHandler) ListUploadsHandler(c *gin.Context) {
	if h.appModel.CurrentAppID() == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			logger.GetLogger().Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": h.appModel.Snapshot().Uploads})
}
