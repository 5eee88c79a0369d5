package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserIDHeader   = "X-User-ID"
	userContextKey = "currentUser"
)

// Identity 以 X-User-ID 找出呼叫者；缺少或查無此人都回 401
func Identity(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.GetHeader(UserIDHeader))
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
			return
		}

		user, err := users.FindByID(c, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
				return
			}
			handleError(c, err, "Identity")
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireTier 只允許列出的權限等級
func RequireTier(tiers ...model.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
			return
		}
		for _, tier := range tiers {
			if user.Tier == tier {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
	}
}

// SelfOrTier 路徑參數 param 指向呼叫者本人，或呼叫者屬於列出的權限等級
func SelfOrTier(param string, tiers ...model.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
			return
		}
		if c.Param(param) == strconv.Itoa(user.ID) {
			c.Next()
			return
		}
		for _, tier := range tiers {
			if user.Tier == tier {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
	}
}

// Restricted admin 與 presenter
func Restricted() gin.HandlerFunc {
	return RequireTier(model.TierAdmin, model.TierPresenter)
}

func AdminOnly() gin.HandlerFunc {
	return RequireTier(model.TierAdmin)
}

// RequestLogger 取代 gin.Logger，輸出到 zap
func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := currentUser(c); user != nil {
			fields = append(fields, zap.Int("user_id", user.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
