package handlers

import (
	"net/http"
	"strings"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/gin-gonic/gin"
)

// MappingHandler serves extraction results and the extracted-to-form field
// mapping, including user overrides of mapped values.
type MappingHandler struct {
	appModel *models.ApplicationModel
}

func NewMappingHandler(model *models.ApplicationModel) *MappingHandler {
	return &MappingHandler{appModel: model}
}

// GetExtractionHandler returns the raw extraction result for the current
// application. An empty result means extraction has not completed yet.
func (h *MappingHandler) GetExtractionHandler(c *gin.Context) {
	snapshot := h.appModel.Snapshot()
	if snapshot.CurrentAppID == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			logger.GetLogger().Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"extraction": snapshot.Extraction,
		"ready":      !snapshot.Extraction.IsEmpty(),
	})
}

// GetMappingHandler returns the field mapping with user overrides applied on
// top of the extracted values.
func (h *MappingHandler) GetMappingHandler(c *gin.Context) {
	if h.appModel.CurrentAppID() == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			logger.GetLogger().Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"mapping": h.appModel.MergedMapping()})
}

type mappingOverrideRequest struct {
	Value string `json:"value"`
}

// UpdateMappingValueHandler records a user correction for one form field.
func (h *MappingHandler) UpdateMappingValueHandler(c *gin.Context) {
	log := logger.GetLogger()

	formField := strings.TrimSpace(c.Param("formField"))
	if formField == "" {
		if err := c.Error(errors.ValidationFailed("Missing form field", "form field name is required")); err != nil {
			log.Errorw("Failed to add validation error", "error", err)
		}
		return
	}

	var req mappingOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid mapping override", "error", err)
		if err := c.Error(errors.ValidationFailed("Invalid request body", err.Error())); err != nil {
			log.Errorw("Failed to add validation error", "error", err)
		}
		return
	}

	if err := h.appModel.UpdateMappingValue(c.Request.Context(), formField, req.Value); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"mapping": h.appModel.MergedMapping()})
}
