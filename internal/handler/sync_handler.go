package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

// SyncHandler 檢視場次的 outbox 同步狀態
type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(service service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("events/:id/sync", AdminOnly(), h.List)
}

func (h *SyncHandler) List(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	ops, err := h.service.ListByEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ListSyncOperations")
		return
	}
	c.JSON(http.StatusOK, ops)
}
