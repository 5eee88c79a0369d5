package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

type PresenterHandler struct {
	service service.PresenterService
}

func NewPresenterHandler(service service.PresenterService) *PresenterHandler {
	return &PresenterHandler{service: service}
}

func (h *PresenterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("events/:id/presenters", h.List)

	restricted := rg.Group("", Restricted())
	{
		restricted.POST("events/:id/presenters/:userId", h.Assign)
		restricted.DELETE("events/:id/presenters/:userId", h.Remove)
	}
}

func (h *PresenterHandler) List(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	presenters, err := h.service.List(c, eventID)
	if err != nil {
		handleError(c, err, "ListPresenters")
		return
	}
	c.JSON(http.StatusOK, presenters)
}

func (h *PresenterHandler) Assign(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	userID, ok := intParam(c, "userId")
	if !ok {
		return
	}
	presenter, err := h.service.Assign(c, eventID, userID)
	if err != nil {
		handleError(c, err, "AssignPresenter")
		return
	}
	markSyncPending(c)
	c.JSON(http.StatusOK, presenter)
}

func (h *PresenterHandler) Remove(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	userID, ok := intParam(c, "userId")
	if !ok {
		return
	}
	if err := h.service.Remove(c, eventID, userID); err != nil {
		handleError(c, err, "RemovePresenter")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Presenter removed"})
}
