package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/service"

	"github.com/gin-gonic/gin"
)

type userURI struct {
	UserID int `uri:"userId" binding:"required,min=1"`
}

// UserHandler 以使用者為主的查詢：報名、已確認出席、擔任講者
type UserHandler struct {
	registrationService service.RegistrationService
	presenterService    service.PresenterService
}

func NewUserHandler(registrationService service.RegistrationService, presenterService service.PresenterService) *UserHandler {
	return &UserHandler{
		registrationService: registrationService,
		presenterService:    presenterService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	staffOrSelf := SelfOrTier("userId", model.TierAdmin, model.TierPresenter)
	rg.GET("users/:userId/registrations", staffOrSelf, h.ListRegistrations)
	rg.GET("users/:userId/confirmed", staffOrSelf, h.ListConfirmed)
	rg.GET("users/:userId/presenting", SelfOrTier("userId", model.TierAdmin), h.ListPresenting)
}

func (h *UserHandler) ListRegistrations(c *gin.Context) {
	h.listRegistrations(c, false, "ListUserRegistrations")
}

func (h *UserHandler) ListConfirmed(c *gin.Context) {
	h.listRegistrations(c, true, "ListUserConfirmed")
}

func (h *UserHandler) listRegistrations(c *gin.Context, attendedOnly bool, operation string) {
	var uri userURI
	if err := BindUri(c, &uri); err != nil {
		return
	}

	registrations, err := h.registrationService.ListByUser(c, uri.UserID, attendedOnly)
	if err != nil {
		handleError(c, err, operation)
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *UserHandler) ListPresenting(c *gin.Context) {
	var uri userURI
	if err := BindUri(c, &uri); err != nil {
		return
	}

	events, err := h.presenterService.ListByUser(c, uri.UserID)
	if err != nil {
		handleError(c, err, "ListUserPresenting")
		return
	}
	c.JSON(http.StatusOK, events)
}
