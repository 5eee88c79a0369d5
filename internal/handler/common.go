package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncStatusHeader 變更已寫入 outbox、外部行事曆尚未確認
const SyncStatusHeader = "X-Sync-Status"

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// intParam 解析路徑上的數字 id，失敗時直接回 400
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func markSyncPending(c *gin.Context) {
	c.Header(SyncStatusHeader, "pending")
}

var errorStatus = []struct {
	err    error
	status int
}{
	{apperrors.ErrEventNotFound, http.StatusNotFound},
	{apperrors.ErrUserNotFound, http.StatusNotFound},
	{apperrors.ErrRegistrationNotFound, http.StatusNotFound},
	{apperrors.ErrPresenterNotFound, http.StatusNotFound},
	{apperrors.ErrSeatsExhausted, http.StatusConflict},
	{apperrors.ErrAlreadyRegistered, http.StatusConflict},
	{apperrors.ErrEventInactive, http.StatusConflict},
	{apperrors.ErrEventTypeNotFound, http.StatusBadRequest},
	{apperrors.ErrInvalidInput, http.StatusBadRequest},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrSyncFailure, http.StatusBadGateway},
}

// handleError 依 sentinel 對應 HTTP 狀態；4xx 記 Warn，其餘記 Error
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status >= http.StatusInternalServerError {
				log.Error(e.err.Error())
			} else {
				log.Warn(e.err.Error())
			}
			c.JSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}
	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// currentUser 由 Identity middleware 放入
func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
