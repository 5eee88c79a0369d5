package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

type AccommodationHandler struct {
	service service.AccommodationService
}

func NewAccommodationHandler(service service.AccommodationService) *AccommodationHandler {
	return &AccommodationHandler{service: service}
}

func (h *AccommodationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("events/:id/accommodations", Restricted(), h.List)
}

func (h *AccommodationHandler) List(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	notes, err := h.service.ListByEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ListAccommodations")
		return
	}
	c.JSON(http.StatusOK, notes)
}
