package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/interfaces/http/handler"
	"github.com/sellerdesk/sellerdesk/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Order     *handler.OrderHandler
	Packaging *handler.PackagingHandler
}

// New builds the gin engine with all routes mounted
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestLogging(logger))

	v1 := engine.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.GET("", h.Order.List)
			orders.GET("/export", h.Order.Export)
			orders.POST("/refresh", h.Order.Refresh)
			orders.GET("/:id", h.Order.Get)
			orders.POST("/:id/ship", h.Order.Ship)
			orders.PUT("/:id/packaging", h.Order.SetPackaging)
			orders.PUT("/:id/note", h.Order.SetNote)
		}

		packagings := v1.Group("/packagings")
		{
			packagings.GET("", h.Packaging.List)
			packagings.POST("", h.Packaging.Create)
			packagings.PUT("/:id", h.Packaging.Update)
			packagings.DELETE("/:id", h.Packaging.Delete)
		}
	}

	return engine
}
