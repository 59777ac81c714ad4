package handlers

import (
	"net/http"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/gin-gonic/gin"
)

// ApplicationHandler exposes lifecycle operations on visa applications:
// create, list, activate, duplicate, delete and the store-wide clear.
type ApplicationHandler struct {
	appModel *models.ApplicationModel
}

func NewApplicationHandler(model *models.ApplicationModel) *ApplicationHandler {
	return &ApplicationHandler{appModel: model}
}

// CreateApplicationHandler creates a fresh application and makes it current.
func (h *ApplicationHandler) CreateApplicationHandler(c *gin.Context) {
	log := logger.GetLogger()

	id, err := h.appModel.CreateApplication(c.Request.Context())
	if err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	log.Infow("Application created", "applicationId", id)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListApplicationsHandler returns all application summaries and the current id.
func (h *ApplicationHandler) ListApplicationsHandler(c *gin.Context) {
	applications, currentID := h.appModel.ListApplications()
	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"currentAppId": currentID,
	})
}

// ActivateApplicationHandler makes the given application current, restoring
// its persisted trip, checklist and upload state.
func (h *ApplicationHandler) ActivateApplicationHandler(c *gin.Context) {
	log := logger.GetLogger()
	id := c.Param("id")

	if err := h.appModel.LoadApplication(c.Request.Context(), id); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, h.appModel.Snapshot())
}

// DuplicateApplicationHandler clones an application's trip selections into a
// new application. The clone starts with a clean checklist and does not
// become current.
func (h *ApplicationHandler) DuplicateApplicationHandler(c *gin.Context) {
	log := logger.GetLogger()
	id := c.Param("id")

	cloneID, err := h.appModel.DuplicateApplication(c.Request.Context(), id)
	if err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	log.Infow("Application duplicated", "sourceId", id, "cloneId", cloneID)
	c.JSON(http.StatusCreated, gin.H{"id": cloneID})
}

// DeleteApplicationHandler removes an application and its persisted state.
func (h *ApplicationHandler) DeleteApplicationHandler(c *gin.Context) {
	log := logger.GetLogger()
	id := c.Param("id")

	if err := h.appModel.DeleteApplication(c.Request.Context(), id); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	log.Infow("Application deleted", "applicationId", id)
	c.Status(http.StatusNoContent)
}

// ClearApplicationsHandler tears down the whole store: every application,
// every snapshot, the works.
func (h *ApplicationHandler) ClearApplicationsHandler(c *gin.Context) {
	log := logger.GetLogger()

	if err := h.appModel.ClearCurrentApplication(c.Request.Context()); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	log.Info("Application store cleared")
	c.Status(http.StatusNoContent)
}

// CurrentApplicationHandler returns the full working-state snapshot the
// wizard renders from.
func (h *ApplicationHandler) CurrentApplicationHandler(c *gin.Context) {
	if h.appModel.CurrentAppID() == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			logger.GetLogger().Errorw("Failed to add model error", "error", err)
		}
		return
	}
	c.JSON(http.StatusOK, h.appModel.Snapshot())
}
