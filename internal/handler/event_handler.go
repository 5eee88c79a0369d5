package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes rg 需已套用 Identity
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("events", h.List)
	rg.GET("events/:id", h.Get)

	restricted := rg.Group("", Restricted())
	{
		restricted.POST("events", h.Create)
		restricted.POST("events/:id/duplicate", h.Duplicate)
		restricted.PUT("events/:id", h.Update)
	}

	rg.DELETE("events/:id", AdminOnly(), h.Delete)
}

// ListEventsQuery all=true 時包含已關閉或已開始的場次
type ListEventsQuery struct {
	All bool `form:"all"`
}

func (h *EventHandler) List(c *gin.Context) {
	var query ListEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	events, err := h.service.List(c, query.All)
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	event, err := h.service.Get(c, id)
	if err != nil {
		handleError(c, err, "GetEvent")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var params model.CreateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}
	created, err := h.service.Create(c, currentUser(c).ID, params)
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Duplicate(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var params model.DuplicateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}
	created, err := h.service.Duplicate(c, currentUser(c).ID, id, params)
	if err != nil {
		handleError(c, err, "DuplicateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var params model.UpdateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}
	if params.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required"})
		return
	}
	updated, err := h.service.Update(c, id, params)
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	if params.TimesChanged() {
		markSyncPending(c)
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		handleError(c, err, "DeleteEvent")
		return
	}
	markSyncPending(c)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
