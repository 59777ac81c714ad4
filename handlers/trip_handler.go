package handlers

import (
	"net/http"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/VisaTrek/visa-trek-backend/services"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/gin-gonic/gin"
)

// TripHandler applies trip selection patches to the current application and
// forwards the result to the optional trips backend.
type TripHandler struct {
	appModel    *models.ApplicationModel
	tripSyncSvc *services.TripSyncService
}

func NewTripHandler(model *models.ApplicationModel, tripSyncSvc *services.TripSyncService) *TripHandler {
	return &TripHandler{
		appModel:    model,
		tripSyncSvc: tripSyncSvc,
	}
}

// UpdateTripHandler merges the patch into the current trip selections. A
// destination change regenerates the checklist; dates changes recompute due
// dates.
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	log := logger.GetLogger()

	var patch types.TripUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		log.Errorw("Invalid trip patch", "error", err)
		if err := c.Error(errors.ValidationFailed("Invalid request body", err.Error())); err != nil {
			log.Errorw("Failed to add validation error", "error", err)
		}
		return
	}

	if err := h.appModel.UpdateTrip(c.Request.Context(), patch); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	// Sync is gated inside the service: nothing is posted until the trip
	// is fully specified, and each application's trip posts at most once.
	snapshot := h.appModel.Snapshot()
	if snapshot.Trip != nil {
		h.tripSyncSvc.SyncTrip(snapshot.CurrentAppID, c.GetHeader("X-User-ID"), *snapshot.Trip)
	}

	c.JSON(http.StatusOK, snapshot)
}
