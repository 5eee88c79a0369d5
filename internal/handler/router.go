package handler

import (
	"net/http"

	"go-gin-pd-registration/internal/repository"

	"github.com/gin-gonic/gin"
)

type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// NewRouter 組裝 /api/v1；除了 /healthz 之外都需要 X-User-ID
func NewRouter(users repository.UserRepository, handlers ...RouteRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1", Identity(users))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}
