package handlers

import (
	"net/http"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/gin-gonic/gin"
)

// ChecklistHandler serves the generated checklist and done-state toggles.
type ChecklistHandler struct {
	appModel *models.ApplicationModel
}

func NewChecklistHandler(model *models.ApplicationModel) *ChecklistHandler {
	return &ChecklistHandler{appModel: model}
}

// GetChecklistHandler returns the current checklist items, the per-item done
// state and the derived progress.
func (h *ChecklistHandler) GetChecklistHandler(c *gin.Context) {
	snapshot := h.appModel.Snapshot()
	if snapshot.CurrentAppID == "" {
		if err := c.Error(errors.NoActiveApplication()); err != nil {
			logger.GetLogger().Errorw("Failed to add model error", "error", err)
		}
		return
	}

	progress := 0
	for _, app := range snapshot.Applications {
		if app.ID == snapshot.CurrentAppID {
			progress = app.ProgressPct
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"checklist":      snapshot.Checklist,
		"checklistState": snapshot.ChecklistState,
		"progressPct":    progress,
	})
}

// ToggleChecklistItemHandler flips the done state of one checklist item.
func (h *ChecklistHandler) ToggleChecklistItemHandler(c *gin.Context) {
	log := logger.GetLogger()
	itemID := c.Param("itemId")

	if err := h.appModel.ToggleChecklistItem(c.Request.Context(), itemID); err != nil {
		if err := c.Error(err); err != nil {
			log.Errorw("Failed to add model error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, h.appModel.Snapshot())
}
