package handlers

import (
	"net/http"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/services"
	"github.com/gin-gonic/gin"
)

// CountryHandler serves the destination country catalog.
type CountryHandler struct {
	countrySvc *services.CountryService
}

func NewCountryHandler(countrySvc *services.CountryService) *CountryHandler {
	return &CountryHandler{countrySvc: countrySvc}
}

// ListCountriesHandler returns all countries, sorted by name. Served from
// cache when warm.
func (h *CountryHandler) ListCountriesHandler(c *gin.Context) {
	countries, err := h.countrySvc.GetCountries(c.Request.Context())
	if err != nil {
		if err := c.Error(err); err != nil {
			logger.GetLogger().Errorw("Failed to add service error", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries})
}
