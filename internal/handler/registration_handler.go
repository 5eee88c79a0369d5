package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	service service.RegistrationService
}

func NewRegistrationHandler(service service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

func (h *RegistrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// 本人報名與取消
	rg.POST("events/:id/register", h.Register)
	rg.DELETE("events/:id/register", h.Cancel)

	restricted := rg.Group("", Restricted())
	{
		restricted.GET("events/:id/registrations", h.List)
		restricted.PUT("events/:id/registrations", h.BulkSetAttendance)
		restricted.PUT("events/:id/registrations/:userId", h.SetAttendance)
	}

	rg.POST("events/:id/registrations", AdminOnly(), h.BulkRegister)
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req model.RegisterRequest
	// body 可省略
	if c.Request.ContentLength != 0 {
		if err := BindJson(c, &req); err != nil {
			return
		}
	}

	registration, err := h.service.Register(c, eventID, currentUser(c).ID, req.AccommodationRequest)
	if err != nil {
		handleError(c, err, "Register")
		return
	}
	markSyncPending(c)
	c.JSON(http.StatusCreated, registration)
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c, eventID, currentUser(c).ID); err != nil {
		handleError(c, err, "CancelRegistration")
		return
	}
	markSyncPending(c)
	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled"})
}

func (h *RegistrationHandler) List(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	registrations, err := h.service.ListByEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ListRegistrations")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) SetAttendance(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	userID, ok := intParam(c, "userId")
	if !ok {
		return
	}
	var req model.SetAttendanceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	registration, err := h.service.SetAttendance(c, eventID, userID, *req.Attended)
	if err != nil {
		handleError(c, err, "SetAttendance")
		return
	}
	c.JSON(http.StatusOK, registration)
}

func (h *RegistrationHandler) BulkRegister(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req model.BulkRegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.BulkRegister(c, eventID, req.UserIDs, req.Force)
	if err != nil {
		handleError(c, err, "BulkRegister")
		return
	}
	if len(result.Registered) > 0 {
		markSyncPending(c)
	}
	c.JSON(http.StatusOK, result)
}

func (h *RegistrationHandler) BulkSetAttendance(c *gin.Context) {
	eventID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req model.BulkAttendanceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.BulkSetAttendance(c, eventID, req.UserIDs, *req.Attended)
	if err != nil {
		handleError(c, err, "BulkSetAttendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
