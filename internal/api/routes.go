package api

import (
	"github.com/gin-gonic/gin"

	"github.com/youruser/idcardapp/internal/metrics"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/card", h.card)
		api.POST("/sheet", h.sheet)
		api.POST("/photo/fit", h.photoFit)
		api.GET("/shape", h.shape)
		api.GET("/qr", h.qr)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
